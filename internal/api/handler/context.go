package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/infrastructure/sessions"
)

// ctxSession extracts the browser session attached by the Session middleware.
// Its absence means the route was registered without that middleware.
func ctxSession(c echo.Context) (*sessions.Session, error) {
	sess, _ := c.Get(sessions.ContextKey).(*sessions.Session)
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindValid binds the request body into dst and validates it.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
