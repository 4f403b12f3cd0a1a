package domain

// Identity is the authenticated user's profile plus role assignments.
// It is replaced wholesale on login and refresh; nothing mutates it in place.
type Identity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CIN       string `json:"cin,omitempty"`
	Roles     []Role `json:"roles"`
}

// HoldsRole reports whether the identity is assigned the role with the given ID.
func (u *Identity) HoldsRole(roleID int64) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// Role is a named bundle of features as received from the backend.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Features    []Feature `json:"features"`
}

// WithFeature returns a copy of the role that also carries f.
// The receiver is left untouched.
func (r Role) WithFeature(f Feature) Role {
	out := r
	out.Features = append(make([]Feature, 0, len(r.Features)+1), r.Features...)
	for _, existing := range r.Features {
		if existing == f {
			return out
		}
	}
	out.Features = append(out.Features, f)
	return out
}

// WithoutFeature returns a copy of the role with every occurrence of f removed.
func (r Role) WithoutFeature(f Feature) Role {
	out := r
	out.Features = make([]Feature, 0, len(r.Features))
	for _, existing := range r.Features {
		if existing != f {
			out.Features = append(out.Features, existing)
		}
	}
	return out
}

// User is a directory entry as listed by the admin API. Unlike Identity it
// is not tied to the current session.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	CIN       string `json:"cin"`
	Roles     []Role `json:"roles"`
}
