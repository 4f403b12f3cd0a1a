package domain

// Session is the observable state of one authenticated browser session.
//
// IsAuthenticated always equals User != nil. IsLoading is only true while a
// login or identity fetch is in flight.
type Session struct {
	User            *Identity `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsLoading       bool      `json:"isLoading"`
	Error           string    `json:"error,omitempty"`
}

// Tokens is the persisted credential pair. The access token is short-lived
// and sent on every request; the refresh token mints a new pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool {
	return t.AccessToken == ""
}
