package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/adminconsole/dashboard/docs"
	"github.com/adminconsole/dashboard/internal/api/handler"
	"github.com/adminconsole/dashboard/internal/api/middleware"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/permission"
	"github.com/adminconsole/dashboard/internal/core/ports"
	"github.com/adminconsole/dashboard/internal/core/routes"
	"github.com/adminconsole/dashboard/pkg/logger"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions middleware.SessionResolver
	Cookie   middleware.CookieConfig
	Perms    *permission.Evaluator
	// Audit may be nil.
	Audit ports.AuditRecorder
	// Health may be nil, in which case readiness always reports ok.
	Health *handler.HealthDependenciesHandler
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(deps.Log))

	// --- Dependencies ---
	g := gate.New(deps.Perms)
	rbac := middleware.NewRBAC(g, deps.Audit)
	authHandler := handler.NewAuthHandler(deps.Sessions)
	dashboardHandler := handler.NewDashboardHandler(g, deps.Perms)
	directoryHandler := handler.NewDirectoryHandler()

	// --- Health probes and tooling (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDeps := deps.Health
	if healthDeps == nil {
		healthDeps = handler.NewHealthDependenciesHandler(nil)
	}
	e.GET("/health", healthHandler.Liveness)     // liveness  – is the process alive?
	e.GET("/health/ready", healthDeps.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(deps.Sessions, deps.Cookie)
	requireAuth := middleware.RequireAuth()

	// --- Session routes ---
	api := e.Group("/api", session)
	api.GET("/session", authHandler.Session)
	api.POST("/session/login", authHandler.Login)
	api.POST("/session/logout", authHandler.Logout)

	// --- Dashboard views ---
	authed := api.Group("", requireAuth)
	authed.GET("/me", dashboardHandler.Profile)
	authed.GET("/menu", dashboardHandler.Menu)
	authed.GET("/home", dashboardHandler.Home, rbac.Route(routes.Dashboard))
	authed.GET("/pages/access", dashboardHandler.PageAccess)

	// Browser page loads: unauthenticated visitors are redirected to login.
	e.GET(routes.Dashboard, dashboardHandler.PageAccess, session, requireAuth)
	e.GET(routes.Dashboard+"/*", dashboardHandler.PageAccess, session, requireAuth)

	// --- Users ---
	authed.GET("/users", directoryHandler.ListUsers, rbac.Route(routes.Users))
	authed.GET("/users/:id", directoryHandler.GetUser, rbac.Route(routes.UserDetail))
	authed.POST("/users", directoryHandler.CreateUser, rbac.Route(routes.UserCreate))
	authed.PUT("/users/:id", directoryHandler.UpdateUser, rbac.Route(routes.UserEdit))
	authed.DELETE("/users/:id", directoryHandler.DeleteUser, rbac.Features(domain.FeatureDeleteUser))
	authed.PUT("/users/:id/password", directoryHandler.ResetPassword, rbac.Features(domain.FeatureResetUserPassword))
	authed.POST("/users/:id/roles/:roleId", directoryHandler.GrantRole, rbac.Features(domain.FeatureAssignRoleToUser))
	authed.DELETE("/users/:id/roles/:roleId", directoryHandler.RevokeRole, rbac.Features(domain.FeatureRevokeRoleFromUser))

	// --- Roles and features ---
	authed.GET("/roles", directoryHandler.ListRoles, rbac.Route(routes.Roles))
	authed.GET("/roles/:id", directoryHandler.GetRole, rbac.Route(routes.RoleDetail))
	authed.POST("/roles", directoryHandler.CreateRole, rbac.Route(routes.RoleCreate))
	authed.PUT("/roles/:id", directoryHandler.UpdateRole, rbac.Route(routes.RoleEdit))
	authed.DELETE("/roles/:id", directoryHandler.DeleteRole, rbac.Features(domain.FeatureDeleteRole))
	authed.POST("/roles/:id/features", directoryHandler.AddFeature, rbac.Features(domain.FeatureAssignFeatureToRole))
	authed.DELETE("/roles/:id/features", directoryHandler.RemoveFeature, rbac.Features(domain.FeatureRevokeFeatureFromRole))
	authed.GET("/features", directoryHandler.ListFeatures, rbac.Features(domain.FeatureListRoles))

	return e
}
