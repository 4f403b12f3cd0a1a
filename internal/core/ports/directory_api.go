package ports

import (
	"context"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// UserInput is the payload for creating or updating a directory user.
// Password is optional on update.
type UserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	Phone     string `json:"phone" validate:"max=32"`
	CIN       string `json:"cin" validate:"max=32"`
}

// PasswordReset is the payload for resetting a user's password.
type PasswordReset struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// RoleInput is the payload for creating or updating a role.
type RoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=256"`
}

// DirectoryAPI is the user and role administration surface of the admin API.
type DirectoryAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, in UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, in PasswordReset) error
	GrantRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error

	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRole(ctx context.Context, id int64) (*domain.Role, error)
	CreateRole(ctx context.Context, in RoleInput) (*domain.Role, error)
	UpdateRole(ctx context.Context, id int64, in RoleInput) (*domain.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	AddFeature(ctx context.Context, roleID int64, f domain.Feature) error
	RemoveFeature(ctx context.Context, roleID int64, f domain.Feature) error

	ListFeatures(ctx context.Context) ([]domain.Feature, error)
}
