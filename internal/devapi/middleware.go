package devapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/permission"
)

const ctxUserID = "user_id"

var errMissingBearer = errors.New("missing bearer token")

// apiError is the error envelope the dashboard's pipeline decodes.
type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *apiError) Error() string { return e.Message }

func fail(status int, code, message string) error {
	return &apiError{Status: status, Message: message, Code: code}
}

// errorHandler renders every failure as {message, code}.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var ae *apiError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
		case errors.As(err, &he):
			ae = &apiError{Status: he.Code, Message: fmt.Sprintf("%v", he.Message), Code: "HTTP_" + strconv.Itoa(he.Code)}
		default:
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			ae = &apiError{Status: http.StatusInternalServerError, Message: domain.DefaultErrorMessage, Code: domain.DefaultErrorCode}
		}
		_ = c.JSON(ae.Status, ae)
	}
}

// Bearer validates the access token and injects the user ID into context.
func Bearer(auth *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return fail(http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			}
			userID, err := auth.ParseAccess(token)
			if err != nil {
				return fail(http.StatusUnauthorized, "TOKEN_INVALID", "invalid or expired token")
			}
			c.Set(ctxUserID, userID)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errMissingBearer
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errMissingBearer
	}
	return parts[1], nil
}

// RequireFeature rejects callers whose roles do not carry feature.
// Roles are re-read from the store on every request so grants apply at once.
func RequireFeature(store *Store, feature domain.Feature) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ctxUserID).(int64)
			user, err := store.Identity(userID)
			if err != nil {
				return fail(http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
			}
			if !permission.HasPermission(user, feature) {
				return fail(http.StatusForbidden, "FORBIDDEN", "missing feature "+string(feature))
			}
			return next(c)
		}
	}
}
