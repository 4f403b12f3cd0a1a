package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

type stubSession struct {
	mu       sync.Mutex
	calls    int
	release  chan struct{}
	started  chan struct{}
	snapshot domain.Session
	initFn   func(ctx context.Context) domain.Session
}

func (s *stubSession) InitializeAuth(ctx context.Context) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.initFn != nil {
		snap := s.initFn(ctx)
		s.mu.Lock()
		s.snapshot = snap
		s.mu.Unlock()
	}
}

func (s *stubSession) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *stubSession) set(snap domain.Session) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func authenticated() domain.Session {
	return domain.Session{User: &domain.Identity{ID: 1, Username: "admin"}, IsAuthenticated: true}
}

func TestGuard_ResolvesAuthenticated(t *testing.T) {
	s := &stubSession{initFn: func(context.Context) domain.Session { return authenticated() }}
	g := NewGuard(s)
	if g.State() != Uninitialized {
		t.Fatalf("expected uninitialized, got %s", g.State())
	}
	if got := g.Resolve(context.Background()); got != Authenticated {
		t.Fatalf("expected authenticated, got %s", got)
	}
	g.Resolve(context.Background())
	if s.calls != 1 {
		t.Fatalf("initialization must run once, ran %d times", s.calls)
	}
}

func TestGuard_ResolvesUnauthenticated(t *testing.T) {
	tests := []struct {
		name string
		snap domain.Session
	}{
		{"no user", domain.Session{}},
		{"flag without user", domain.Session{IsAuthenticated: true}},
		{"error present", func() domain.Session {
			s := authenticated()
			s.Error = "Failed to fetch user data"
			return s
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := tc.snap
			g := NewGuard(&stubSession{initFn: func(context.Context) domain.Session { return snap }})
			if got := g.Resolve(context.Background()); got != Unauthenticated {
				t.Fatalf("expected unauthenticated, got %s", got)
			}
		})
	}
}

func TestGuard_ConcurrentCallerSeesInitializing(t *testing.T) {
	s := &stubSession{
		started: make(chan struct{}),
		release: make(chan struct{}),
		initFn:  func(context.Context) domain.Session { return authenticated() },
	}
	g := NewGuard(s)

	done := make(chan State)
	go func() { done <- g.Resolve(context.Background()) }()

	select {
	case <-s.started:
	case <-time.After(2 * time.Second):
		t.Fatal("initialization did not start")
	}
	if got := g.Resolve(context.Background()); got != Initializing {
		t.Fatalf("expected initializing while in flight, got %s", got)
	}
	close(s.release)
	if got := <-done; got != Authenticated {
		t.Fatalf("expected authenticated, got %s", got)
	}
}

func TestGuard_InitSurvivesCallerCancellation(t *testing.T) {
	var sawErr error
	s := &stubSession{initFn: func(ctx context.Context) domain.Session {
		sawErr = ctx.Err()
		return authenticated()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewGuard(s).Resolve(ctx); got != Authenticated {
		t.Fatalf("expected authenticated, got %s", got)
	}
	if sawErr != nil {
		t.Fatalf("initialization context must not inherit cancellation, got %v", sawErr)
	}
}

func TestGuard_TracksLaterLogout(t *testing.T) {
	s := &stubSession{initFn: func(context.Context) domain.Session { return authenticated() }}
	g := NewGuard(s)
	g.Resolve(context.Background())
	s.set(domain.Session{})
	if got := g.State(); got != Unauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %s", got)
	}
}

func TestGuard_MarkInitialized(t *testing.T) {
	s := &stubSession{}
	s.set(authenticated())
	g := NewGuard(s)
	g.MarkInitialized()
	if got := g.Resolve(context.Background()); got != Authenticated {
		t.Fatalf("expected authenticated, got %s", got)
	}
	if s.calls != 0 {
		t.Fatalf("marked guard must not re-run initialization")
	}
}

func TestLoginRedirect(t *testing.T) {
	tests := map[string]string{
		"/users/5/edit":     "/login?from=%2Fusers%2F5%2Fedit",
		"/roles?page=2":     "/login?from=%2Froles%3Fpage%3D2",
		"":                  "/login",
		"//evil.example":    "/login",
		"https://evil.test": "/login",
		"/login":            "/login",
	}
	for in, want := range tests {
		if got := LoginRedirect(in); got != want {
			t.Fatalf("LoginRedirect(%q): expected %q, got %q", in, want, got)
		}
	}
}
