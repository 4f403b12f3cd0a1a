// Package sessions keeps the per-browser session objects of the dashboard.
// Each browser session gets its own credential pipeline, session service,
// guard and directory service; idle sessions are evicted and rebuilt from
// their persisted tokens on the next request.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/api/metrics"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/permission"
	"github.com/adminconsole/dashboard/internal/core/ports"
	"github.com/adminconsole/dashboard/internal/core/service"
	"github.com/adminconsole/dashboard/internal/infrastructure/apiclient"
)

// ContextKey is the echo context key under which the request's *Session is stored.
const ContextKey = "dashboard.session"

const (
	defaultMaxSessions = 10000
	defaultIdleTTL     = 30 * time.Minute
)

// Session bundles everything scoped to one browser session.
type Session struct {
	ID        string
	Auth      *service.SessionService
	Guard     *gate.Guard
	Directory *service.DirectoryService
}

// Deps are the collaborators shared by every session.
type Deps struct {
	API    apiclient.Config
	Tokens ports.TokenStores
	Perms  *permission.Evaluator
	// Audit may be nil.
	Audit ports.AuditRecorder
	Log   zerolog.Logger
}

// Registry maps session IDs to sessions.
type Registry struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
	deps  Deps
}

// NewRegistry returns a Registry holding at most maxSessions sessions, each
// evicted after idleTTL without a request.
func NewRegistry(maxSessions int, idleTTL time.Duration, deps Deps) *Registry {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	r := &Registry{deps: deps}
	r.cache = expirable.NewLRU[string, *Session](maxSessions, r.onEvict, idleTTL)
	return r
}

// Resolve returns the session for id, creating one when id is unknown or not
// a valid session ID. created reports whether a new session was built; its
// ID may differ from id and must be sent back to the browser.
func (r *Registry) Resolve(id string) (sess *Session, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, parseErr := uuid.Parse(id)
	if parseErr != nil {
		id = uuid.NewString()
	} else {
		id = parsed.String()
		if existing, ok := r.cache.Get(id); ok {
			// Re-adding renews the idle deadline.
			r.cache.Add(id, existing)
			return existing, false, nil
		}
	}

	sess, err = r.build(id)
	if err != nil {
		return nil, false, err
	}
	// Drop an expired entry that has not been reaped yet so it is closed.
	r.cache.Remove(id)
	r.cache.Add(id, sess)
	metrics.ActiveSessions.Inc()
	return sess, true, nil
}

// Rotate moves an authenticated session to a freshly minted ID: the tokens
// follow the new session and the old ID is dropped along with its tokens, so
// an ID planted before login is worthless after it.
func (r *Registry) Rotate(ctx context.Context, old *Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldTokens := r.deps.Tokens.ForSession(old.ID)
	tokens, err := oldTokens.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	id := uuid.NewString()
	sess, err := r.build(id)
	if err != nil {
		return nil, err
	}
	if !tokens.Empty() {
		if err := r.deps.Tokens.ForSession(id).Save(ctx, tokens); err != nil {
			return nil, fmt.Errorf("rotate session: %w", err)
		}
	}
	if err := oldTokens.Clear(ctx); err != nil {
		r.deps.Log.Warn().Err(err).Str("session", old.ID).Msg("failed to clear rotated session tokens")
	}

	if user := old.Auth.User(); user != nil {
		sess.Auth.SetUser(user)
		sess.Guard.MarkInitialized()
	}
	r.cache.Remove(old.ID)
	r.cache.Add(id, sess)
	metrics.ActiveSessions.Inc()
	r.deps.Log.Debug().Str("from", old.ID).Str("to", id).Msg("session rotated")
	return sess, nil
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close evicts every session.
func (r *Registry) Close() {
	r.cache.Purge()
}

func (r *Registry) build(id string) (*Session, error) {
	log := r.deps.Log.With().Str("session", id).Logger()
	tokens := r.deps.Tokens.ForSession(id)

	client, err := apiclient.New(r.deps.API, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	auth := service.NewSessionService(id, client, tokens, r.deps.Audit, r.deps.Log)
	client.OnExpired(auth.HandleExpired)

	var perms service.PermissionCache
	if r.deps.Perms != nil {
		perms = r.deps.Perms
	}
	return &Session{
		ID:        id,
		Auth:      auth,
		Guard:     gate.NewGuard(auth),
		Directory: service.NewDirectoryService(client, auth, perms, r.deps.Audit, log),
	}, nil
}

func (r *Registry) onEvict(id string, sess *Session) {
	sess.Auth.Close()
	metrics.ActiveSessions.Dec()
	r.deps.Log.Debug().Str("session", id).Msg("session evicted")
}
