package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgLoginFailed    = "Login failed"
	MsgFetchFailed    = "Failed to fetch user data"
)

const expiryCheckTimeout = 2 * time.Second

// ErrSuperseded is returned when a newer login, logout or fetch replaced the
// operation before its result could be applied.
var ErrSuperseded = errors.New("superseded by a newer session operation")

// Result is the outcome of a session operation. The service never panics
// and never reports failure any other way.
type Result struct {
	User *domain.Identity
	Err  error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// SessionService owns the session state of one browser session. All state
// changes happen under mu so User, IsAuthenticated, IsLoading and Error are
// always observed together.
type SessionService struct {
	id     string
	api    ports.AuthAPI
	tokens ports.TokenStore
	audit  ports.AuditRecorder
	log    zerolog.Logger

	mu    sync.Mutex
	state domain.Session
	gen   uint64
}

// NewSessionService returns an unauthenticated session. audit may be nil.
func NewSessionService(
	id string,
	api ports.AuthAPI,
	tokens ports.TokenStore,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		id:     id,
		api:    api,
		tokens: tokens,
		audit:  audit,
		log:    log.With().Str("session", id).Logger(),
	}
}

// ID returns the browser session identifier.
func (s *SessionService) ID() string { return s.id }

// Snapshot returns a copy of the current state.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current identity, or nil.
func (s *SessionService) User() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

func (s *SessionService) SetUser(u *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = u
	s.state.IsAuthenticated = u != nil
	s.state.Error = ""
}

func (s *SessionService) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = loading
}

func (s *SessionService) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}

func (s *SessionService) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.Error = ""
}

// InitializeAuth bootstraps the session from persisted tokens. Without an
// access token the session becomes unauthenticated without a network call.
func (s *SessionService) InitializeAuth(ctx context.Context) {
	tokens, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("token store unavailable, starting unauthenticated")
	}
	if err != nil || tokens.Empty() {
		s.mu.Lock()
		s.gen++
		s.state = domain.Session{}
		s.mu.Unlock()
		return
	}
	s.FetchCurrentUser(ctx)
}

// FetchCurrentUser reloads the identity with the stored access token. A
// rejected credential forces a logout.
func (s *SessionService) FetchCurrentUser(ctx context.Context) Result {
	gen := s.begin()
	defer s.endLoading(gen)

	user, err := s.api.FetchCurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug().Msg("discarding superseded identity fetch")
		return Result{Err: ErrSuperseded}
	}
	switch {
	case err == nil:
		s.setUserLocked(user)
		return Result{User: user}
	case domain.IsUnauthorized(err):
		// Still under mu: a login cannot save fresh tokens between the
		// generation check and this logout.
		s.api.Logout(ctx)
		s.expireLocked()
		return Result{Err: err}
	default:
		s.log.Warn().Err(err).Msg("identity fetch failed")
		s.failLocked(messageOr(err, MsgFetchFailed))
		return Result{Err: err}
	}
}

// Login authenticates and loads the full identity. On failure the session
// is left unauthenticated with a human-readable error.
func (s *SessionService) Login(ctx context.Context, username, password string) Result {
	gen := s.begin()
	defer s.endLoading(gen)

	user, err := s.api.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return Result{Err: ErrSuperseded}
	}
	if err != nil {
		s.log.Info().Err(err).Str("username", username).Msg("login failed")
		s.failLocked(messageOr(err, MsgLoginFailed))
		s.record(domain.AuditLoginFailed, username, err.Error())
		return Result{Err: err}
	}
	s.setUserLocked(user)
	s.log.Info().Str("username", user.Username).Msg("login succeeded")
	s.record(domain.AuditLoginSucceeded, user.Username, "")
	return Result{User: user}
}

// Logout resets the session and discards the persisted tokens. It never fails.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	username := ""
	if s.state.User != nil {
		username = s.state.User.Username
	}
	s.state = domain.Session{}
	s.mu.Unlock()

	s.api.Logout(ctx)
	s.record(domain.AuditLogout, username, "")
}

// HandleExpired reacts to the credential pipeline giving up on the session.
// The pipeline clears the tokens before signalling, so tokens found in the
// store belong to a newer login and the signal is stale.
func (s *SessionService) HandleExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), expiryCheckTimeout)
	defer cancel()
	if tokens, err := s.tokens.Load(ctx); err == nil && !tokens.Empty() {
		s.log.Debug().Msg("ignoring stale expiry, session holds newer credentials")
		return
	}
	s.expireLocked()
}

// Close drops the in-memory state. Persisted tokens are kept so a later
// session with the same identifier can be rebuilt from them.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = domain.Session{}
}

func (s *SessionService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.IsLoading = true
	s.state.Error = ""
	return s.gen
}

func (s *SessionService) endLoading(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.state.IsLoading = false
	}
}

func (s *SessionService) setUserLocked(u *domain.Identity) {
	s.state.User = u
	s.state.IsAuthenticated = u != nil
	s.state.Error = ""
}

func (s *SessionService) failLocked(msg string) {
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.Error = msg
}

func (s *SessionService) expireLocked() {
	if s.state.User == nil && s.state.Error == MsgSessionExpired {
		return
	}
	username := ""
	if s.state.User != nil {
		username = s.state.User.Username
	}
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.IsLoading = false
	s.state.Error = MsgSessionExpired
	s.log.Info().Msg("session expired")
	s.record(domain.AuditSessionExpired, username, "")
}

func (s *SessionService) record(action domain.AuditAction, username, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		SessionID: s.id,
		Username:  username,
		Action:    action,
		Detail:    detail,
		At:        time.Now().UTC(),
	})
}

// messageOr prefers a specific message from the backend over fallback.
func messageOr(err error, fallback string) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Message != domain.DefaultErrorMessage {
		return apiErr.Message
	}
	return fallback
}
