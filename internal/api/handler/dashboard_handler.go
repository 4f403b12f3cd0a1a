package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/api/middleware"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/permission"
	"github.com/adminconsole/dashboard/internal/core/routes"
)

const (
	homeTitle    = "Welcome to Your Dashboard"
	homeSubtitle = "Here's an overview of your system performance and activity"
)

// homeWidget is a shortcut on the home dashboard. Widgets the user cannot
// use are left out rather than shown as denied.
type homeWidget struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Path     string           `json:"path"`
	Features []domain.Feature `json:"-"`
}

var homeWidgets = []homeWidget{
	{ID: "users", Title: "Manage users", Path: routes.Users, Features: []domain.Feature{domain.FeatureListUsers}},
	{ID: "add-user", Title: "Add a user", Path: routes.UserCreate, Features: []domain.Feature{domain.FeatureCreateUser}},
	{ID: "roles", Title: "Manage roles", Path: routes.Roles, Features: []domain.Feature{domain.FeatureListRoles}},
	{ID: "add-role", Title: "Add a role", Path: routes.RoleCreate, Features: []domain.Feature{domain.FeatureCreateRole}},
}

// DashboardHandler serves the views every authenticated user can reach.
type DashboardHandler struct {
	gate  *gate.Gate
	perms *permission.Evaluator
}

func NewDashboardHandler(g *gate.Gate, perms *permission.Evaluator) *DashboardHandler {
	return &DashboardHandler{gate: g, perms: perms}
}

type profileResponse struct {
	ID          int64            `json:"id"`
	Username    string           `json:"username"`
	DisplayName string           `json:"displayName"`
	Initials    string           `json:"initials"`
	Email       string           `json:"email"`
	Roles       []string         `json:"roles"`
	Permissions []domain.Feature `json:"permissions"`
}

type menuResponse struct {
	Items []routes.Descriptor `json:"items"`
}

type homeResponse struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Widgets  []homeWidget `json:"widgets"`
}

type pageAccessResponse struct {
	Location string            `json:"location"`
	Route    routes.Descriptor `json:"route"`
	Verdict  string            `json:"verdict"`
	Denial   *gate.Denial      `json:"denial,omitempty"`
}

// Profile returns the header card of the current user.
//
// @Summary      Current user profile
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func (h *DashboardHandler) Profile(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	u := sess.Auth.User()
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, profileResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: permission.DisplayName(u),
		Initials:    permission.Initials(u),
		Email:       permission.DisplayEmail(u),
		Roles:       permission.UserRoleNames(u),
		Permissions: h.perms.Permissions(u).Sorted(),
	})
}

// Menu returns the navigation entries the current user may open.
//
// @Summary      Navigation menu
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  menuResponse
// @Router       /api/menu [get]
func (h *DashboardHandler) Menu(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, menuResponse{Items: h.gate.FilterMenu(sess.Auth.User(), routes.MenuItems())})
}

// Home returns the home dashboard with the shortcuts the user can use.
//
// @Summary      Home dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  homeResponse
// @Router       /api/home [get]
func (h *DashboardHandler) Home(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	user := sess.Auth.User()
	widgets := make([]homeWidget, 0, len(homeWidgets))
	for _, w := range homeWidgets {
		req := gate.Requirement{Features: w.Features, Mode: gate.AnyOf, HideFallback: true}
		if h.gate.Check(user, req).Allowed() {
			widgets = append(widgets, w)
		}
	}
	return c.JSON(http.StatusOK, homeResponse{Title: homeTitle, Subtitle: homeSubtitle, Widgets: widgets})
}

// PageAccess decides whether the current user may open a dashboard location.
// The location comes from the "path" query parameter or, for browser page
// loads, from the request path itself.
//
// @Summary      Page access decision
// @Tags         dashboard
// @Produce      json
// @Param        path  query     string  false  "Dashboard location, e.g. /dashboard/users/42"
// @Success      200   {object}  pageAccessResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/pages/access [get]
func (h *DashboardHandler) PageAccess(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	location := c.QueryParam(middleware.LocationParam)
	if location == "" {
		location = c.Request().URL.Path
	}
	d, ok := routes.Match(location)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}

	req := gate.ForRoute(d, gate.AllOf)
	req.RedirectTo = routes.Parent(d.Path)
	decision := h.gate.Check(sess.Auth.User(), req)
	return c.JSON(http.StatusOK, pageAccessResponse{
		Location: location,
		Route:    d,
		Verdict:  decision.Verdict.String(),
		Denial:   decision.Denial,
	})
}
