package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	loginFn   func(ctx context.Context, username, password string) (*domain.Identity, error)
	fetchFn   func(ctx context.Context) (*domain.Identity, error)
	logoutFn  func(ctx context.Context)
	logoutCnt int
}

func (a *stubAuthAPI) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	return a.loginFn(ctx, username, password)
}

func (a *stubAuthAPI) FetchCurrentUser(ctx context.Context) (*domain.Identity, error) {
	return a.fetchFn(ctx)
}

func (a *stubAuthAPI) Logout(ctx context.Context) {
	a.logoutCnt++
	if a.logoutFn != nil {
		a.logoutFn(ctx)
	}
}

type stubTokens struct {
	tokens  domain.Tokens
	loadErr error
}

func (s *stubTokens) Load(context.Context) (domain.Tokens, error) { return s.tokens, s.loadErr }
func (s *stubTokens) Save(_ context.Context, t domain.Tokens) error {
	s.tokens = t
	return nil
}
func (s *stubTokens) Clear(context.Context) error {
	s.tokens = domain.Tokens{}
	return nil
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *stubRecorder) Record(e domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var jane = &domain.Identity{
	ID:        1,
	Username:  "jdoe",
	FirstName: "Jane",
	LastName:  "Doe",
	Roles:     []domain.Role{{ID: 1, Name: "admin", Features: []domain.Feature{domain.FeatureListUsers}}},
}

func authErr() error {
	return domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, "UNAUTHORIZED", "", domain.ErrSessionExpired)
}

func newSessionSvc(api *stubAuthAPI, tokens *stubTokens, rec *stubRecorder) *SessionService {
	if tokens == nil {
		tokens = &stubTokens{}
	}
	if rec == nil {
		return NewSessionService("sid-1", api, tokens, nil, zerolog.Nop())
	}
	return NewSessionService("sid-1", api, tokens, rec, zerolog.Nop())
}

func assertConsistent(t *testing.T, s domain.Session) {
	t.Helper()
	if s.IsAuthenticated != (s.User != nil) {
		t.Fatalf("IsAuthenticated=%v but User=%v", s.IsAuthenticated, s.User)
	}
	if s.IsLoading {
		t.Fatalf("IsLoading must be false once the operation returned")
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSessionService_LoginLogoutRoundTrip(t *testing.T) {
	tokens := &stubTokens{}
	api := &stubAuthAPI{
		loginFn: func(ctx context.Context, username, password string) (*domain.Identity, error) {
			tokens.tokens = domain.Tokens{AccessToken: "a1", RefreshToken: "r1"}
			return jane, nil
		},
		logoutFn: func(context.Context) { tokens.tokens = domain.Tokens{} },
	}
	rec := &stubRecorder{}
	svc := newSessionSvc(api, tokens, rec)

	res := svc.Login(context.Background(), "jdoe", "secret")
	if !res.OK() || res.User != jane {
		t.Fatalf("expected successful login, got %+v", res)
	}
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if !snap.IsAuthenticated || snap.User != jane || snap.Error != "" {
		t.Fatalf("unexpected state after login: %+v", snap)
	}
	if tokens.tokens.Empty() {
		t.Fatalf("tokens must be persisted after login")
	}

	svc.Logout(context.Background())
	snap = svc.Snapshot()
	assertConsistent(t, snap)
	if snap.IsAuthenticated || snap.User != nil {
		t.Fatalf("unexpected state after logout: %+v", snap)
	}
	if !tokens.tokens.Empty() {
		t.Fatalf("tokens must be absent after logout")
	}

	got := rec.actions()
	if len(got) != 2 || got[0] != domain.AuditLoginSucceeded || got[1] != domain.AuditLogout {
		t.Fatalf("unexpected audit trail %v", got)
	}
}

func TestSessionService_LoginFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "backend message is surfaced",
			err:     domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", domain.ErrInvalidCredentials),
			wantMsg: "Invalid username or password",
		},
		{
			name:    "generic failure falls back",
			err:     domain.NewAPIError(domain.KindNetwork, 0, "", "", domain.ErrTransport),
			wantMsg: MsgLoginFailed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubAuthAPI{loginFn: func(context.Context, string, string) (*domain.Identity, error) { return nil, tc.err }}
			rec := &stubRecorder{}
			svc := newSessionSvc(api, nil, rec)

			res := svc.Login(context.Background(), "jdoe", "nope")
			if res.OK() || !errors.Is(res.Err, tc.err) {
				t.Fatalf("expected login error, got %+v", res)
			}
			snap := svc.Snapshot()
			assertConsistent(t, snap)
			if snap.User != nil || snap.Error != tc.wantMsg {
				t.Fatalf("unexpected state %+v", snap)
			}
			if got := rec.actions(); len(got) != 1 || got[0] != domain.AuditLoginFailed {
				t.Fatalf("expected login_failed audit, got %v", got)
			}
		})
	}
}

func TestSessionService_InitializeAuth_NoToken(t *testing.T) {
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) {
		t.Fatal("fetch must not be called without a token")
		return nil, nil
	}}
	svc := newSessionSvc(api, &stubTokens{}, nil)
	svc.InitializeAuth(context.Background())
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.IsAuthenticated {
		t.Fatalf("expected unauthenticated session")
	}
}

func TestSessionService_InitializeAuth_StoreError(t *testing.T) {
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) {
		t.Fatal("fetch must not be called when the store fails")
		return nil, nil
	}}
	svc := newSessionSvc(api, &stubTokens{loadErr: errors.New("redis down")}, nil)
	svc.InitializeAuth(context.Background())
	if svc.Snapshot().IsAuthenticated {
		t.Fatalf("expected unauthenticated session")
	}
}

func TestSessionService_InitializeAuth_WithToken(t *testing.T) {
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) { return jane, nil }}
	svc := newSessionSvc(api, &stubTokens{tokens: domain.Tokens{AccessToken: "a", RefreshToken: "r"}}, nil)
	svc.InitializeAuth(context.Background())
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != jane {
		t.Fatalf("expected user to be loaded, got %+v", snap)
	}
}

func TestSessionService_FetchAuthFailureForcesLogout(t *testing.T) {
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) { return nil, authErr() }}
	rec := &stubRecorder{}
	svc := newSessionSvc(api, nil, rec)
	svc.SetUser(jane)

	res := svc.FetchCurrentUser(context.Background())
	if res.OK() || !domain.IsAuth(res.Err) {
		t.Fatalf("expected auth error, got %+v", res)
	}
	if api.logoutCnt != 1 {
		t.Fatalf("expected forced logout, got %d calls", api.logoutCnt)
	}
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != nil || snap.Error != MsgSessionExpired {
		t.Fatalf("unexpected state %+v", snap)
	}
	if got := rec.actions(); len(got) != 1 || got[0] != domain.AuditSessionExpired {
		t.Fatalf("expected one session_expired audit, got %v", got)
	}
}

func TestSessionService_FetchNetworkFailure(t *testing.T) {
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) {
		return nil, domain.NewAPIError(domain.KindNetwork, 0, "", "", domain.ErrTransport)
	}}
	svc := newSessionSvc(api, nil, nil)
	svc.SetUser(jane)

	res := svc.FetchCurrentUser(context.Background())
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if api.logoutCnt != 0 {
		t.Fatalf("network failures must not log out")
	}
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != nil || snap.Error != MsgFetchFailed {
		t.Fatalf("unexpected state %+v", snap)
	}
}

func TestSessionService_HandleExpiredIsIdempotent(t *testing.T) {
	rec := &stubRecorder{}
	svc := newSessionSvc(&stubAuthAPI{}, nil, rec)
	svc.SetUser(jane)

	svc.HandleExpired()
	svc.HandleExpired()

	snap := svc.Snapshot()
	if snap.User != nil || snap.IsAuthenticated || snap.Error != MsgSessionExpired {
		t.Fatalf("unexpected state %+v", snap)
	}
	if got := rec.actions(); len(got) != 1 {
		t.Fatalf("expected a single audit event, got %v", got)
	}
}

func TestSessionService_LoadingVisibleDuringFetch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) {
		close(entered)
		<-release
		return jane, nil
	}}
	svc := newSessionSvc(api, nil, nil)

	done := make(chan Result)
	go func() { done <- svc.FetchCurrentUser(context.Background()) }()
	<-entered
	if !svc.Snapshot().IsLoading {
		t.Fatalf("expected IsLoading while fetch is in flight")
	}
	close(release)
	<-done
	assertConsistent(t, svc.Snapshot())
}

func TestSessionService_StaleFetchDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &stubAuthAPI{fetchFn: func(context.Context) (*domain.Identity, error) {
		close(entered)
		<-release
		return jane, nil
	}}
	svc := newSessionSvc(api, nil, nil)

	done := make(chan Result)
	go func() { done <- svc.FetchCurrentUser(context.Background()) }()
	<-entered
	svc.Logout(context.Background())
	close(release)

	res := <-done
	if !errors.Is(res.Err, ErrSuperseded) {
		t.Fatalf("expected superseded result, got %+v", res)
	}
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != nil {
		t.Fatalf("stale fetch must not resurrect the user after logout")
	}
}

func TestSessionService_StaleUnauthorizedFetchKeepsNewerLogin(t *testing.T) {
	fresh := domain.Tokens{AccessToken: "a2", RefreshToken: "r2"}
	tokens := &stubTokens{tokens: domain.Tokens{AccessToken: "a1", RefreshToken: "r1"}}
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &stubAuthAPI{
		fetchFn: func(context.Context) (*domain.Identity, error) {
			close(entered)
			<-release
			return nil, authErr()
		},
		loginFn: func(context.Context, string, string) (*domain.Identity, error) {
			tokens.tokens = fresh
			return jane, nil
		},
		logoutFn: func(context.Context) { tokens.tokens = domain.Tokens{} },
	}
	rec := &stubRecorder{}
	svc := newSessionSvc(api, tokens, rec)

	done := make(chan Result)
	go func() { done <- svc.FetchCurrentUser(context.Background()) }()
	<-entered
	if res := svc.Login(context.Background(), "jdoe", "secret"); !res.OK() {
		t.Fatalf("login: %v", res.Err)
	}
	close(release)

	res := <-done
	if !errors.Is(res.Err, ErrSuperseded) {
		t.Fatalf("expected superseded result, got %+v", res)
	}
	if api.logoutCnt != 0 {
		t.Fatalf("superseded fetch must not log out, got %d calls", api.logoutCnt)
	}
	if tokens.tokens != fresh {
		t.Fatalf("login tokens must survive, got %+v", tokens.tokens)
	}
	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != jane || snap.Error != "" {
		t.Fatalf("unexpected state %+v", snap)
	}
	if got := rec.actions(); len(got) != 1 || got[0] != domain.AuditLoginSucceeded {
		t.Fatalf("expected only the login audit, got %v", got)
	}
}

func TestSessionService_StaleExpirySignalIgnored(t *testing.T) {
	tokens := &stubTokens{}
	api := &stubAuthAPI{loginFn: func(context.Context, string, string) (*domain.Identity, error) {
		tokens.tokens = domain.Tokens{AccessToken: "a2", RefreshToken: "r2"}
		return jane, nil
	}}
	rec := &stubRecorder{}
	svc := newSessionSvc(api, tokens, rec)

	if res := svc.Login(context.Background(), "jdoe", "secret"); !res.OK() {
		t.Fatalf("login: %v", res.Err)
	}
	svc.HandleExpired()

	snap := svc.Snapshot()
	assertConsistent(t, snap)
	if snap.User != jane || snap.Error != "" {
		t.Fatalf("expiry signal for older credentials must not end the session, got %+v", snap)
	}
	if got := rec.actions(); len(got) != 1 {
		t.Fatalf("expected no session_expired audit, got %v", got)
	}
}

func TestSessionService_Mutators(t *testing.T) {
	svc := newSessionSvc(&stubAuthAPI{}, nil, nil)
	svc.SetError("boom")
	svc.SetUser(jane)
	if snap := svc.Snapshot(); snap.Error != "" || !snap.IsAuthenticated {
		t.Fatalf("SetUser must clear the error and authenticate, got %+v", snap)
	}
	svc.SetLoading(true)
	if !svc.Snapshot().IsLoading {
		t.Fatalf("SetLoading(true) not applied")
	}
	svc.SetLoading(false)
	svc.ClearUser()
	assertConsistent(t, svc.Snapshot())
	if svc.User() != nil {
		t.Fatalf("ClearUser must drop the identity")
	}
}
