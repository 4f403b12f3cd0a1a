// Package devapi is a local stand-in for the admin backend. It implements
// every endpoint the dashboard consumes so the BFF can be run and tested
// without the real service.
package devapi

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

type userRecord struct {
	user    domain.User
	hash    []byte
	roleIDs []int64
}

// Store is the in-memory user and role directory.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*userRecord
	roles      map[int64]domain.Role
	nextUserID int64
	nextRoleID int64
	cost       int
}

// NewStore returns an empty directory hashing passwords with cost.
// A cost below bcrypt.MinCost uses bcrypt.DefaultCost.
func NewStore(cost int) *Store {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		users: make(map[int64]*userRecord),
		roles: make(map[int64]domain.Role),
		cost:  cost,
	}
}

// Authenticate checks username and password.
func (s *Store) Authenticate(username, password string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, rec := range s.users {
		if rec.user.Username == username {
			if bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) != nil {
				return 0, domain.ErrInvalidCredentials
			}
			return id, nil
		}
	}
	return 0, domain.ErrInvalidCredentials
}

// Identity returns the user with fully expanded roles.
func (s *Store) Identity(userID int64) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	u := s.expandLocked(rec)
	return &domain.Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CIN:       u.CIN,
		Roles:     u.Roles,
	}, nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, s.expandLocked(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetUser(id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return s.expandLocked(rec), nil
}

func (s *Store) CreateUser(in ports.UserInput) (domain.User, error) {
	if in.Password == "" {
		return domain.User{}, fmt.Errorf("password: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTakenLocked(in.Username, 0) {
		return domain.User{}, fmt.Errorf("username %q: %w", in.Username, domain.ErrConflict)
	}
	s.nextUserID++
	rec := &userRecord{hash: hash}
	rec.user = applyUserInput(domain.User{ID: s.nextUserID}, in)
	s.users[rec.user.ID] = rec
	return s.expandLocked(rec), nil
}

func (s *Store) UpdateUser(id int64, in ports.UserInput) (domain.User, error) {
	var hash []byte
	if in.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), s.cost); err != nil {
			return domain.User{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if s.usernameTakenLocked(in.Username, id) {
		return domain.User{}, fmt.Errorf("username %q: %w", in.Username, domain.ErrConflict)
	}
	rec.user = applyUserInput(rec.user, in)
	if hash != nil {
		rec.hash = hash
	}
	return s.expandLocked(rec), nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *Store) SetPassword(id int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	rec.hash = hash
	return nil
}

func (s *Store) GrantRole(userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if _, ok := s.roles[roleID]; !ok {
		return fmt.Errorf("role %d: %w", roleID, domain.ErrNotFound)
	}
	for _, id := range rec.roleIDs {
		if id == roleID {
			return fmt.Errorf("user %d already holds role %d: %w", userID, roleID, domain.ErrConflict)
		}
	}
	rec.roleIDs = append(rec.roleIDs, roleID)
	return nil
}

func (s *Store) RevokeRole(userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	kept := rec.roleIDs[:0]
	found := false
	for _, id := range rec.roleIDs {
		if id == roleID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return fmt.Errorf("user %d does not hold role %d: %w", userID, roleID, domain.ErrNotFound)
	}
	rec.roleIDs = kept
	return nil
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (s *Store) ListRoles() []domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetRole(id int64) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return domain.Role{}, fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *Store) CreateRole(in ports.RoleInput, features ...domain.Feature) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == in.Name {
			return domain.Role{}, fmt.Errorf("role %q: %w", in.Name, domain.ErrConflict)
		}
	}
	s.nextRoleID++
	role := domain.Role{ID: s.nextRoleID, Name: in.Name, Description: in.Description, Features: []domain.Feature{}}
	for _, f := range features {
		role = role.WithFeature(f)
	}
	s.roles[role.ID] = role
	return role, nil
}

func (s *Store) UpdateRole(id int64, in ports.RoleInput) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[id]
	if !ok {
		return domain.Role{}, fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	for otherID, r := range s.roles {
		if otherID != id && r.Name == in.Name {
			return domain.Role{}, fmt.Errorf("role %q: %w", in.Name, domain.ErrConflict)
		}
	}
	role.Name = in.Name
	role.Description = in.Description
	s.roles[id] = role
	return role, nil
}

// DeleteRole removes the role and every assignment of it.
func (s *Store) DeleteRole(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	delete(s.roles, id)
	for _, rec := range s.users {
		kept := rec.roleIDs[:0]
		for _, rid := range rec.roleIDs {
			if rid != id {
				kept = append(kept, rid)
			}
		}
		rec.roleIDs = kept
	}
	return nil
}

func (s *Store) AddFeature(roleID int64, f domain.Feature) error {
	return s.editRole(roleID, func(r domain.Role) domain.Role { return r.WithFeature(f) })
}

func (s *Store) RemoveFeature(roleID int64, f domain.Feature) error {
	return s.editRole(roleID, func(r domain.Role) domain.Role { return r.WithoutFeature(f) })
}

func (s *Store) editRole(id int64, edit func(domain.Role) domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[id]
	if !ok {
		return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	s.roles[id] = edit(role)
	return nil
}

func (s *Store) expandLocked(rec *userRecord) domain.User {
	u := rec.user
	u.Roles = make([]domain.Role, 0, len(rec.roleIDs))
	for _, id := range rec.roleIDs {
		if r, ok := s.roles[id]; ok {
			u.Roles = append(u.Roles, r)
		}
	}
	return u
}

func (s *Store) usernameTakenLocked(username string, except int64) bool {
	for id, rec := range s.users {
		if id != except && rec.user.Username == username {
			return true
		}
	}
	return false
}

func applyUserInput(u domain.User, in ports.UserInput) domain.User {
	u.Username = in.Username
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Phone = in.Phone
	u.CIN = in.CIN
	return u
}
