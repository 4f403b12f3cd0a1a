package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/routes"
	"github.com/adminconsole/dashboard/internal/infrastructure/sessions"
)

// SessionRotator moves a session to a new ID.
type SessionRotator interface {
	Rotate(ctx context.Context, old *sessions.Session) (*sessions.Session, error)
}

type AuthHandler struct {
	rotator SessionRotator
}

// NewAuthHandler returns the session handler. With a nil rotator the
// session keeps its ID across login.
func NewAuthHandler(rotator SessionRotator) *AuthHandler {
	return &AuthHandler{rotator: rotator}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// From is the dashboard location the user was sent away from.
	From string `json:"from,omitempty"`
}

type sessionResponse struct {
	State      string         `json:"state"`
	Session    domain.Session `json:"session"`
	RedirectTo string         `json:"redirectTo,omitempty"`
}

// Session reports the session state, initializing it from persisted tokens
// on first use.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	state := sess.Guard.Resolve(c.Request().Context())
	return c.JSON(http.StatusOK, sessionResponse{State: state.String(), Session: sess.Auth.Snapshot()})
}

// Login authenticates the browser session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/session/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res := sess.Auth.Login(c.Request().Context(), req.Username, req.Password)
	sess.Guard.MarkInitialized()
	if !res.OK() {
		return res.Err
	}
	if h.rotator != nil {
		rotated, err := h.rotator.Rotate(c.Request().Context(), sess)
		if err != nil {
			return err
		}
		sess = rotated
		c.Set(sessions.ContextKey, sess)
	}

	redirect := routes.Dashboard
	if gate.SafeReturnPath(req.From) && req.From != routes.Login {
		redirect = req.From
	}
	return c.JSON(http.StatusOK, sessionResponse{
		State:      sess.Guard.State().String(),
		Session:    sess.Auth.Snapshot(),
		RedirectTo: redirect,
	})
}

// Logout ends the browser session. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	sess.Auth.Logout(c.Request().Context())
	sess.Guard.MarkInitialized()
	return c.JSON(http.StatusOK, sessionResponse{
		State:      sess.Guard.State().String(),
		Session:    sess.Auth.Snapshot(),
		RedirectTo: routes.Login,
	})
}
