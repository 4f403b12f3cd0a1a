package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDirectoryAPI struct {
	err     error
	calls   []string
	users   []domain.User
	roles   []domain.Role
	feature domain.Feature
}

func (a *stubDirectoryAPI) call(name string) error {
	a.calls = append(a.calls, name)
	return a.err
}

func (a *stubDirectoryAPI) ListUsers(context.Context) ([]domain.User, error) {
	return a.users, a.call("ListUsers")
}
func (a *stubDirectoryAPI) GetUser(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id}, a.call("GetUser")
}
func (a *stubDirectoryAPI) CreateUser(_ context.Context, in ports.UserInput) (*domain.User, error) {
	if err := a.call("CreateUser"); err != nil {
		return nil, err
	}
	return &domain.User{ID: 10, Username: in.Username}, nil
}
func (a *stubDirectoryAPI) UpdateUser(_ context.Context, id int64, in ports.UserInput) (*domain.User, error) {
	if err := a.call("UpdateUser"); err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Username: in.Username}, nil
}
func (a *stubDirectoryAPI) DeleteUser(context.Context, int64) error { return a.call("DeleteUser") }
func (a *stubDirectoryAPI) ResetPassword(context.Context, int64, ports.PasswordReset) error {
	return a.call("ResetPassword")
}
func (a *stubDirectoryAPI) GrantRole(context.Context, int64, int64) error { return a.call("GrantRole") }
func (a *stubDirectoryAPI) RevokeRole(context.Context, int64, int64) error { return a.call("RevokeRole") }
func (a *stubDirectoryAPI) ListRoles(context.Context) ([]domain.Role, error) {
	return a.roles, a.call("ListRoles")
}
func (a *stubDirectoryAPI) GetRole(_ context.Context, id int64) (*domain.Role, error) {
	return &domain.Role{ID: id}, a.call("GetRole")
}
func (a *stubDirectoryAPI) CreateRole(_ context.Context, in ports.RoleInput) (*domain.Role, error) {
	if err := a.call("CreateRole"); err != nil {
		return nil, err
	}
	return &domain.Role{ID: 5, Name: in.Name}, nil
}
func (a *stubDirectoryAPI) UpdateRole(_ context.Context, id int64, in ports.RoleInput) (*domain.Role, error) {
	if err := a.call("UpdateRole"); err != nil {
		return nil, err
	}
	return &domain.Role{ID: id, Name: in.Name}, nil
}
func (a *stubDirectoryAPI) DeleteRole(context.Context, int64) error { return a.call("DeleteRole") }
func (a *stubDirectoryAPI) AddFeature(_ context.Context, _ int64, f domain.Feature) error {
	a.feature = f
	return a.call("AddFeature")
}
func (a *stubDirectoryAPI) RemoveFeature(_ context.Context, _ int64, f domain.Feature) error {
	a.feature = f
	return a.call("RemoveFeature")
}
func (a *stubDirectoryAPI) ListFeatures(context.Context) ([]domain.Feature, error) {
	return domain.Features(), a.call("ListFeatures")
}

type stubSession struct {
	user    *domain.Identity
	fetches int
}

func (s *stubSession) ID() string { return "sid-dir" }
func (s *stubSession) User() *domain.Identity { return s.user }
func (s *stubSession) FetchCurrentUser(context.Context) Result {
	s.fetches++
	return Result{User: s.user}
}

type stubCache struct{ invalidated []int64 }

func (c *stubCache) InvalidateRole(roleID int64) int {
	c.invalidated = append(c.invalidated, roleID)
	return 1
}

func newDirectorySvc(api *stubDirectoryAPI, sess *stubSession, cache *stubCache, rec *stubRecorder) *DirectoryService {
	var perms PermissionCache
	if cache != nil {
		perms = cache
	}
	var audit ports.AuditRecorder
	if rec != nil {
		audit = rec
	}
	return NewDirectoryService(api, sess, perms, audit, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDirectoryService_AddFeatureToHeldRoleReloads(t *testing.T) {
	api := &stubDirectoryAPI{}
	sess := &stubSession{user: jane}
	cache := &stubCache{}
	rec := &stubRecorder{}
	svc := newDirectorySvc(api, sess, cache, rec)

	if err := svc.AddFeature(context.Background(), 1, domain.FeatureCreateUser); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.feature != domain.FeatureCreateUser {
		t.Fatalf("feature must be forwarded unchanged, got %q", api.feature)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 1 {
		t.Fatalf("expected role 1 invalidated, got %v", cache.invalidated)
	}
	if sess.fetches != 1 {
		t.Fatalf("expected current user reload, got %d", sess.fetches)
	}
	if got := rec.actions(); len(got) != 1 || got[0] != domain.AuditRoleChanged {
		t.Fatalf("expected role_changed audit, got %v", got)
	}
	if rec.events[0].SessionID != "sid-dir" || rec.events[0].Username != "jdoe" {
		t.Fatalf("audit event missing session context: %+v", rec.events[0])
	}
}

func TestDirectoryService_RemoveFeatureFromOtherRole(t *testing.T) {
	cache := &stubCache{}
	sess := &stubSession{user: jane}
	svc := newDirectorySvc(&stubDirectoryAPI{}, sess, cache, nil)

	if err := svc.RemoveFeature(context.Background(), 99, domain.FeatureListUsers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 99 {
		t.Fatalf("expected role 99 invalidated, got %v", cache.invalidated)
	}
	if sess.fetches != 0 {
		t.Fatalf("role not held by current user must not trigger reload")
	}
}

func TestDirectoryService_GrantRoleToSelfReloads(t *testing.T) {
	sess := &stubSession{user: jane}
	svc := newDirectorySvc(&stubDirectoryAPI{}, sess, &stubCache{}, nil)

	if err := svc.GrantRole(context.Background(), jane.ID, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.GrantRole(context.Background(), 42, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.fetches != 1 {
		t.Fatalf("expected exactly one reload, got %d", sess.fetches)
	}
}

func TestDirectoryService_RevokeRoleFromSelfInvalidates(t *testing.T) {
	cache := &stubCache{}
	sess := &stubSession{user: jane}
	svc := newDirectorySvc(&stubDirectoryAPI{}, sess, cache, nil)

	if err := svc.RevokeRole(context.Background(), jane.ID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.invalidated) != 1 || sess.fetches != 1 {
		t.Fatalf("expected invalidation and reload, got %v / %d", cache.invalidated, sess.fetches)
	}
}

func TestDirectoryService_ErrorsAreWrapped(t *testing.T) {
	apiErr := domain.NewAPIError(domain.KindAuth, http.StatusForbidden, "FORBIDDEN", "nope", domain.ErrForbidden)
	cache := &stubCache{}
	rec := &stubRecorder{}
	sess := &stubSession{user: jane}
	svc := newDirectorySvc(&stubDirectoryAPI{err: apiErr}, sess, cache, rec)

	err := svc.DeleteRole(context.Background(), 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected wrapped forbidden error, got %v", err)
	}
	if domain.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("status must survive wrapping, got %d", domain.StatusOf(err))
	}
	if len(cache.invalidated) != 0 || sess.fetches != 0 || len(rec.actions()) != 0 {
		t.Fatalf("failed edits must have no side effects")
	}
}

func TestDirectoryService_CreateAndList(t *testing.T) {
	rec := &stubRecorder{}
	api := &stubDirectoryAPI{users: []domain.User{{ID: 1}, {ID: 2}}}
	svc := newDirectorySvc(api, &stubSession{}, nil, rec)

	u, err := svc.CreateUser(context.Background(), ports.UserInput{Username: "new"})
	if err != nil || u.Username != "new" {
		t.Fatalf("unexpected create result %+v, %v", u, err)
	}
	users, err := svc.ListUsers(context.Background())
	if err != nil || len(users) != 2 {
		t.Fatalf("unexpected list result %v, %v", users, err)
	}
	features, err := svc.ListFeatures(context.Background())
	if err != nil || len(features) != len(domain.Features()) {
		t.Fatalf("unexpected features %v, %v", features, err)
	}
	if got := rec.actions(); len(got) != 1 || got[0] != domain.AuditUserChanged {
		t.Fatalf("expected user_changed audit, got %v", got)
	}
}
