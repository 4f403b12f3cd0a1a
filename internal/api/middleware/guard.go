package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/routes"
)

// LocationParam carries the dashboard location a request is made for, so an
// unauthenticated caller can be sent back there after login.
const LocationParam = "path"

type loadingResponse struct {
	Status string `json:"status"`
}

type unauthenticatedResponse struct {
	Error    string `json:"error"`
	Location string `json:"location"`
}

// RequireAuth runs the session's top-level guard. Nothing behind it is served
// until the session has been initialized and is authenticated.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessionFrom(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			switch sess.Guard.Resolve(c.Request().Context()) {
			case gate.Authenticated:
				return next(c)
			case gate.Initializing:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, loadingResponse{Status: "loading"})
			}

			location := gate.LoginRedirect(requestedLocation(c))
			if acceptsHTML(c) {
				return c.Redirect(http.StatusFound, location)
			}
			return c.JSON(http.StatusUnauthorized, unauthenticatedResponse{
				Error:    "authentication required",
				Location: location,
			})
		}
	}
}

// requestedLocation is the dashboard location to return to after login.
func requestedLocation(c echo.Context) string {
	if loc := c.QueryParam(LocationParam); gate.SafeReturnPath(loc) {
		return loc
	}
	if strings.HasPrefix(c.Request().URL.Path, routes.Dashboard) {
		return c.Request().URL.RequestURI()
	}
	return routes.Dashboard
}

func acceptsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
