package gate

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/routes"
)

// State is the top-level guard's position in its lifecycle.
type State int

const (
	Uninitialized State = iota
	Initializing
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

const defaultInitTimeout = 15 * time.Second

// SessionSource is the part of the session service the guard drives.
type SessionSource interface {
	InitializeAuth(ctx context.Context)
	Snapshot() domain.Session
}

// Guard protects the whole dashboard for one browser session.
//
//	UNINITIALIZED → INITIALIZING → {AUTHENTICATED, UNAUTHENTICATED}
//
// Once initialization has completed the terminal state is recomputed from
// the session on every call, so a later login or logout moves the guard
// between the two terminal states.
type Guard struct {
	mu          sync.Mutex
	initialized bool
	running     bool
	session     SessionSource
	initTimeout time.Duration
}

// NewGuard returns a guard in the Uninitialized state.
func NewGuard(session SessionSource) *Guard {
	return &Guard{session: session, initTimeout: defaultInitTimeout}
}

// State reports the current state without triggering initialization.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Guard) stateLocked() State {
	switch {
	case g.running:
		return Initializing
	case !g.initialized:
		return Uninitialized
	default:
		return evaluate(g.session.Snapshot())
	}
}

// Resolve drives the state machine. The first caller runs initialization
// and waits for it; callers arriving while it is in flight get Initializing
// and must show a loading indicator. Initialization runs detached from ctx's
// cancellation so an abandoned request cannot leave the session half-built.
func (g *Guard) Resolve(ctx context.Context) State {
	g.mu.Lock()
	if g.initialized || g.running {
		state := g.stateLocked()
		g.mu.Unlock()
		return state
	}
	g.running = true
	g.mu.Unlock()

	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.initTimeout)
	defer cancel()
	g.session.InitializeAuth(initCtx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
	g.initialized = true
	return g.stateLocked()
}

// MarkInitialized records that the session was established without going
// through Resolve, for example by an explicit login.
func (g *Guard) MarkInitialized() {
	g.mu.Lock()
	g.initialized = true
	g.mu.Unlock()
}

func evaluate(s domain.Session) State {
	if s.IsAuthenticated && s.User != nil && s.Error == "" {
		return Authenticated
	}
	return Unauthenticated
}

// LoginRedirect builds the login location preserving the requested one so
// login can return the user there.
func LoginRedirect(requested string) string {
	if !SafeReturnPath(requested) || requested == routes.Login {
		return routes.Login
	}
	return routes.Login + "?from=" + url.QueryEscape(requested)
}

// SafeReturnPath reports whether p is a same-origin absolute path.
func SafeReturnPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
