package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/infrastructure/apiclient"
	"github.com/adminconsole/dashboard/internal/infrastructure/tokenstore"
)

func newTestRegistry(t *testing.T, max int, ttl time.Duration) *Registry {
	t.Helper()
	r := NewRegistry(max, ttl, Deps{
		API:    apiclient.Config{BaseURL: "http://admin.invalid"},
		Tokens: tokenstore.NewMemory(),
		Log:    zerolog.Nop(),
	})
	t.Cleanup(r.Close)
	return r
}

func TestResolve_CreatesAndReuses(t *testing.T) {
	r := newTestRegistry(t, 10, time.Minute)

	first, created, err := r.Resolve("")
	if err != nil || !created {
		t.Fatalf("expected new session, got created=%v err=%v", created, err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Fatalf("session ID must be a UUID, got %q", first.ID)
	}
	if first.Guard.State() != gate.Uninitialized {
		t.Fatalf("new session must start uninitialized")
	}

	again, created, err := r.Resolve(first.ID)
	if err != nil || created || again != first {
		t.Fatalf("expected the same session back, created=%v err=%v", created, err)
	}
}

func TestResolve_RejectsForgedIDs(t *testing.T) {
	r := newTestRegistry(t, 10, time.Minute)
	sess, created, err := r.Resolve("../../etc/passwd")
	if err != nil || !created {
		t.Fatalf("expected new session, got created=%v err=%v", created, err)
	}
	if sess.ID == "../../etc/passwd" {
		t.Fatalf("forged ID must be replaced")
	}
}

func TestResolve_RebuildsUnknownValidID(t *testing.T) {
	r := newTestRegistry(t, 10, time.Minute)
	id := uuid.NewString()
	sess, created, err := r.Resolve(id)
	if err != nil || !created || sess.ID != id {
		t.Fatalf("expected session rebuilt under %s, got %+v created=%v err=%v", id, sess, created, err)
	}
}

func TestRegistry_EvictsOverCapacity(t *testing.T) {
	r := newTestRegistry(t, 2, time.Minute)
	first, _, _ := r.Resolve("")
	r.Resolve("")
	r.Resolve("")

	if r.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", r.Len())
	}
	if _, ok := r.Get(first.ID); ok {
		t.Fatalf("oldest session must be evicted")
	}
}

func TestRegistry_EvictsIdleSessions(t *testing.T) {
	r := newTestRegistry(t, 10, 50*time.Millisecond)
	sess, _, _ := r.Resolve("")

	time.Sleep(150 * time.Millisecond)
	if _, ok := r.Get(sess.ID); ok {
		t.Fatalf("idle session must expire")
	}
}

func TestRegistry_InvalidBaseURL(t *testing.T) {
	r := NewRegistry(1, time.Minute, Deps{
		API:    apiclient.Config{BaseURL: ":bad"},
		Tokens: tokenstore.NewMemory(),
		Log:    zerolog.Nop(),
	})
	if _, _, err := r.Resolve(""); err == nil {
		t.Fatalf("expected build error")
	}
}

func TestRotate_MovesTokensToFreshID(t *testing.T) {
	store := tokenstore.NewMemory()
	r := NewRegistry(10, time.Minute, Deps{
		API:    apiclient.Config{BaseURL: "http://admin.invalid"},
		Tokens: store,
		Log:    zerolog.Nop(),
	})
	t.Cleanup(r.Close)
	ctx := context.Background()

	planted := uuid.NewString()
	old, _, err := r.Resolve(planted)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	pair := domain.Tokens{AccessToken: "a", RefreshToken: "r"}
	if err := store.ForSession(planted).Save(ctx, pair); err != nil {
		t.Fatalf("save: %v", err)
	}
	old.Auth.SetUser(&domain.Identity{ID: 1, Username: "jdoe"})

	fresh, err := r.Rotate(ctx, old)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if fresh.ID == planted {
		t.Fatalf("rotation must mint a new ID")
	}
	if got, _ := store.ForSession(fresh.ID).Load(ctx); got != pair {
		t.Fatalf("tokens must follow the session, got %+v", got)
	}
	if got, _ := store.ForSession(planted).Load(ctx); !got.Empty() {
		t.Fatalf("old ID must lose its tokens, got %+v", got)
	}
	if fresh.Guard.State() != gate.Authenticated || fresh.Auth.User().Username != "jdoe" {
		t.Fatalf("rotated session must stay authenticated, got %s", fresh.Guard.State())
	}
	if _, ok := r.Get(planted); ok {
		t.Fatalf("old session must be evicted")
	}
	if old.Auth.Snapshot().IsAuthenticated {
		t.Fatalf("old session must be reset")
	}

	again, created, err := r.Resolve(planted)
	if err != nil || !created || again.Auth.Snapshot().IsAuthenticated {
		t.Fatalf("planted ID must come back unauthenticated, created=%v err=%v", created, err)
	}
}
