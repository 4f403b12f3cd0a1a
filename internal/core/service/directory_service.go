package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

// PermissionCache drops memoized permission sets. *permission.Evaluator
// satisfies it.
type PermissionCache interface {
	InvalidateRole(roleID int64) int
}

// CurrentSession is the part of SessionService the directory needs to keep
// the signed-in user's permissions current after an edit.
type CurrentSession interface {
	ID() string
	User() *domain.Identity
	FetchCurrentUser(ctx context.Context) Result
}

// DirectoryService administers users and roles on behalf of one session.
// Edits that can change what the signed-in user may do invalidate memoized
// permissions and reload the identity.
type DirectoryService struct {
	api     ports.DirectoryAPI
	session CurrentSession
	perms   PermissionCache
	audit   ports.AuditRecorder
	log     zerolog.Logger
}

// NewDirectoryService returns a DirectoryService. perms and audit may be nil.
func NewDirectoryService(
	api ports.DirectoryAPI,
	session CurrentSession,
	perms PermissionCache,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *DirectoryService {
	return &DirectoryService{api: api, session: session, perms: perms, audit: audit, log: log}
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.api.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *DirectoryService) CreateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	user, err := s.api.CreateUser(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.record(domain.AuditUserChanged, "created user "+user.Username)
	return user, nil
}

func (s *DirectoryService) UpdateUser(ctx context.Context, id int64, in ports.UserInput) (*domain.User, error) {
	user, err := s.api.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.record(domain.AuditUserChanged, "updated user "+strconv.FormatInt(id, 10))
	if s.isCurrentUser(id) {
		s.reload(ctx)
	}
	return user, nil
}

func (s *DirectoryService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.record(domain.AuditUserChanged, "deleted user "+strconv.FormatInt(id, 10))
	return nil
}

func (s *DirectoryService) ResetPassword(ctx context.Context, id int64, in ports.PasswordReset) error {
	if err := s.api.ResetPassword(ctx, id, in); err != nil {
		return fmt.Errorf("reset password of user %d: %w", id, err)
	}
	s.record(domain.AuditUserChanged, "reset password of user "+strconv.FormatInt(id, 10))
	return nil
}

func (s *DirectoryService) GrantRole(ctx context.Context, userID, roleID int64) error {
	if err := s.api.GrantRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("grant role %d to user %d: %w", roleID, userID, err)
	}
	s.record(domain.AuditUserChanged, fmt.Sprintf("granted role %d to user %d", roleID, userID))
	if s.isCurrentUser(userID) {
		s.reload(ctx)
	}
	return nil
}

func (s *DirectoryService) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if err := s.api.RevokeRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("revoke role %d from user %d: %w", roleID, userID, err)
	}
	s.record(domain.AuditUserChanged, fmt.Sprintf("revoked role %d from user %d", roleID, userID))
	if s.isCurrentUser(userID) {
		s.invalidate(roleID)
		s.reload(ctx)
	}
	return nil
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (s *DirectoryService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.api.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *DirectoryService) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.api.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role %d: %w", id, err)
	}
	return role, nil
}

func (s *DirectoryService) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	role, err := s.api.CreateRole(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.record(domain.AuditRoleChanged, "created role "+role.Name)
	return role, nil
}

func (s *DirectoryService) UpdateRole(ctx context.Context, id int64, in ports.RoleInput) (*domain.Role, error) {
	role, err := s.api.UpdateRole(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update role %d: %w", id, err)
	}
	s.record(domain.AuditRoleChanged, "updated role "+strconv.FormatInt(id, 10))
	s.roleChanged(ctx, id)
	return role, nil
}

func (s *DirectoryService) DeleteRole(ctx context.Context, id int64) error {
	if err := s.api.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("delete role %d: %w", id, err)
	}
	s.record(domain.AuditRoleChanged, "deleted role "+strconv.FormatInt(id, 10))
	s.roleChanged(ctx, id)
	return nil
}

// AddFeature grants f to every holder of the role. The feature string is
// sent exactly as given.
func (s *DirectoryService) AddFeature(ctx context.Context, roleID int64, f domain.Feature) error {
	if err := s.api.AddFeature(ctx, roleID, f); err != nil {
		return fmt.Errorf("add feature %s to role %d: %w", f, roleID, err)
	}
	s.record(domain.AuditRoleChanged, fmt.Sprintf("added %s to role %d", f, roleID))
	s.roleChanged(ctx, roleID)
	return nil
}

func (s *DirectoryService) RemoveFeature(ctx context.Context, roleID int64, f domain.Feature) error {
	if err := s.api.RemoveFeature(ctx, roleID, f); err != nil {
		return fmt.Errorf("remove feature %s from role %d: %w", f, roleID, err)
	}
	s.record(domain.AuditRoleChanged, fmt.Sprintf("removed %s from role %d", f, roleID))
	s.roleChanged(ctx, roleID)
	return nil
}

func (s *DirectoryService) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	features, err := s.api.ListFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	return features, nil
}

// roleChanged keeps cached permissions consistent after an edit to roleID.
// Other sessions holding the role see the change on their next fetch.
func (s *DirectoryService) roleChanged(ctx context.Context, roleID int64) {
	s.invalidate(roleID)
	if s.session != nil && s.session.User().HoldsRole(roleID) {
		s.reload(ctx)
	}
}

func (s *DirectoryService) invalidate(roleID int64) {
	if s.perms == nil {
		return
	}
	if n := s.perms.InvalidateRole(roleID); n > 0 {
		s.log.Debug().Int64("role_id", roleID).Int("entries", n).Msg("permission cache invalidated")
	}
}

func (s *DirectoryService) isCurrentUser(userID int64) bool {
	if s.session == nil {
		return false
	}
	u := s.session.User()
	return u != nil && u.ID == userID
}

func (s *DirectoryService) reload(ctx context.Context) {
	if res := s.session.FetchCurrentUser(ctx); !res.OK() {
		s.log.Warn().Err(res.Err).Msg("reloading current user after directory edit failed")
	}
}

func (s *DirectoryService) record(action domain.AuditAction, detail string) {
	if s.audit == nil {
		return
	}
	event := domain.AuditEvent{Action: action, Detail: detail, At: time.Now().UTC()}
	if s.session != nil {
		event.SessionID = s.session.ID()
		if u := s.session.User(); u != nil {
			event.Username = u.Username
		}
	}
	s.audit.Record(event)
}
