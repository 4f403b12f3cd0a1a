package devapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

type handlers struct {
	store    *Store
	auth     *AuthService
	validate *validator.Validate
}

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type featureRequest struct {
	Feature string `json:"feature" validate:"required"`
}

// --- Auth ---

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	pair, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return fail(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		}
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) refresh(c echo.Context) error {
	var req refreshRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		return fail(http.StatusUnauthorized, "SESSION_EXPIRED", "refresh token is invalid or expired")
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) me(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(int64)
	user, err := h.store.Identity(userID)
	if err != nil {
		return fail(http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *handlers) logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload")
	}
	if req.RefreshToken != "" {
		h.auth.Revoke(req.RefreshToken)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Users ---

func (h *handlers) listUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.ListUsers())
}

func (h *handlers) getUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.store.GetUser(id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *handlers) createUser(c echo.Context) error {
	var in ports.UserInput
	if err := h.bind(c, &in); err != nil {
		return err
	}
	user, err := h.store.CreateUser(in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *handlers) updateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.UserInput
	if err := h.bind(c, &in); err != nil {
		return err
	}
	user, err := h.store.UpdateUser(id, in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *handlers) deleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteUser(id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) resetPassword(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.PasswordReset
	if err := h.bind(c, &in); err != nil {
		return err
	}
	if err := h.store.SetPassword(id, in.Password); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) grantRole(c echo.Context) error {
	return h.userRole(c, h.store.GrantRole)
}

func (h *handlers) revokeRole(c echo.Context) error {
	return h.userRole(c, h.store.RevokeRole)
}

func (h *handlers) userRole(c echo.Context, apply func(userID, roleID int64) error) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	roleID, err := pathID(c, "roleId")
	if err != nil {
		return err
	}
	if err := apply(userID, roleID); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Roles ---

func (h *handlers) listRoles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.ListRoles())
}

func (h *handlers) getRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role, err := h.store.GetRole(id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *handlers) createRole(c echo.Context) error {
	var in ports.RoleInput
	if err := h.bind(c, &in); err != nil {
		return err
	}
	role, err := h.store.CreateRole(in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *handlers) updateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.RoleInput
	if err := h.bind(c, &in); err != nil {
		return err
	}
	role, err := h.store.UpdateRole(id, in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *handlers) deleteRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteRole(id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) addFeature(c echo.Context) error {
	return h.roleFeature(c, h.store.AddFeature)
}

func (h *handlers) removeFeature(c echo.Context) error {
	return h.roleFeature(c, h.store.RemoveFeature)
}

func (h *handlers) roleFeature(c echo.Context, apply func(roleID int64, f domain.Feature) error) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req featureRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	f := domain.Feature(req.Feature)
	if !f.Known() {
		return fail(http.StatusBadRequest, "UNKNOWN_FEATURE", "unknown feature "+req.Feature)
	}
	if err := apply(id, f); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) listFeatures(c echo.Context) error {
	features := domain.Features()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	return c.JSON(http.StatusOK, names)
}

// --- Helpers ---

// bind decodes and validates the request body.
func (h *handlers) bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return fail(http.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload")
	}
	if err := h.validate.Struct(dst); err != nil {
		return fail(http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(http.StatusBadRequest, "INVALID_ID", "invalid "+name)
	}
	return id, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(http.StatusBadRequest, "INVALID_INPUT", err.Error())
	}
	return err
}
