package devapi

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
	"github.com/adminconsole/dashboard/pkg/logger"
)

const (
	AdminRole  = "ADMIN"
	ViewerRole = "VIEWER"
)

// NewRouter builds the Echo instance serving the auth and directory endpoints.
func NewRouter(store *Store, auth *AuthService, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(log))

	h := &handlers{store: store, auth: auth, validate: validator.New()}
	bearer := Bearer(auth)
	need := func(f domain.Feature) echo.MiddlewareFunc { return RequireFeature(store, f) }

	// --- Auth routes ---
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)
	e.GET("/auth/me", h.me, bearer)
	e.POST("/auth/logout", h.logout, bearer)

	// --- Directory routes ---
	v1 := e.Group("/api/v1", bearer)

	v1.GET("/users", h.listUsers, need(domain.FeatureListUsers))
	v1.GET("/users/:id", h.getUser, need(domain.FeatureListUsers))
	v1.POST("/users", h.createUser, need(domain.FeatureCreateUser))
	v1.PUT("/users/:id", h.updateUser, need(domain.FeatureUpdateUser))
	v1.DELETE("/users/:id", h.deleteUser, need(domain.FeatureDeleteUser))
	v1.PUT("/users/:id/password", h.resetPassword, need(domain.FeatureResetUserPassword))
	v1.POST("/users/:id/roles/:roleId", h.grantRole, need(domain.FeatureAssignRoleToUser))
	v1.DELETE("/users/:id/roles/:roleId", h.revokeRole, need(domain.FeatureRevokeRoleFromUser))

	v1.GET("/roles", h.listRoles, need(domain.FeatureListRoles))
	v1.GET("/roles/:id", h.getRole, need(domain.FeatureListRoles))
	v1.POST("/roles", h.createRole, need(domain.FeatureCreateRole))
	v1.PUT("/roles/:id", h.updateRole, need(domain.FeatureUpdateRole))
	v1.DELETE("/roles/:id", h.deleteRole, need(domain.FeatureDeleteRole))
	v1.POST("/roles/:id/features", h.addFeature, need(domain.FeatureAssignFeatureToRole))
	v1.DELETE("/roles/:id/features", h.removeFeature, need(domain.FeatureRevokeFeatureFromRole))

	v1.GET("/features", h.listFeatures, need(domain.FeatureListRoles))

	return e
}

// Seed creates the ADMIN role carrying every feature, a read-only VIEWER role
// and an administrator account holding ADMIN. It returns the administrator.
func Seed(store *Store, username, password string) (domain.User, error) {
	admin, err := store.CreateRole(ports.RoleInput{Name: AdminRole, Description: "Full access"}, domain.Features()...)
	if err != nil {
		return domain.User{}, fmt.Errorf("seed admin role: %w", err)
	}
	if _, err := store.CreateRole(ports.RoleInput{Name: ViewerRole, Description: "Read-only access"},
		domain.FeatureListUsers, domain.FeatureListRoles); err != nil {
		return domain.User{}, fmt.Errorf("seed viewer role: %w", err)
	}

	user, err := store.CreateUser(ports.UserInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		FirstName: "System",
		LastName:  "Administrator",
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("seed admin user: %w", err)
	}
	if err := store.GrantRole(user.ID, admin.ID); err != nil {
		return domain.User{}, fmt.Errorf("seed admin grant: %w", err)
	}
	return store.GetUser(user.ID)
}
