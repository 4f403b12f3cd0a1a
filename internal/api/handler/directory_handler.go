package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

// DirectoryHandler exposes user, role and feature administration. Feature
// checks happen in the RBAC middleware; the admin API enforces them again.
type DirectoryHandler struct{}

func NewDirectoryHandler() *DirectoryHandler {
	return &DirectoryHandler{}
}

type featureRequest struct {
	Feature string `json:"feature" validate:"required"`
}

type featureView struct {
	Feature     domain.Feature `json:"feature"`
	Description string         `json:"description"`
}

// --- Users ---

// ListUsers returns every directory user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /api/users [get]
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	users, err := sess.Directory.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *DirectoryHandler) GetUser(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := sess.Directory.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser adds a user.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      ports.UserInput  true  "User"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users [post]
func (h *DirectoryHandler) CreateUser(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var in ports.UserInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	if in.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}
	user, err := sess.Directory.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser edits a user. An empty password keeps the current one.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "User ID"
// @Param        body  body      ports.UserInput  true  "User"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id} [put]
func (h *DirectoryHandler) UpdateUser(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.UserInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	user, err := sess.Directory.UpdateUser(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user.
//
// @Summary      Delete user
// @Tags         users
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *DirectoryHandler) DeleteUser(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := sess.Directory.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword sets a new password for a user.
//
// @Summary      Reset user password
// @Tags         users
// @Accept       json
// @Param        id    path  int                  true  "User ID"
// @Param        body  body  ports.PasswordReset  true  "New password"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /api/users/{id}/password [put]
func (h *DirectoryHandler) ResetPassword(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.PasswordReset
	if err := bindValid(c, &in); err != nil {
		return err
	}
	if err := sess.Directory.ResetPassword(c.Request().Context(), id, in); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantRole assigns a role to a user.
//
// @Summary      Assign role to user
// @Tags         users
// @Param        id      path  int  true  "User ID"
// @Param        roleId  path  int  true  "Role ID"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Router       /api/users/{id}/roles/{roleId} [post]
func (h *DirectoryHandler) GrantRole(c echo.Context) error {
	return h.userRole(c, true)
}

// RevokeRole removes a role from a user.
//
// @Summary      Revoke role from user
// @Tags         users
// @Param        id      path  int  true  "User ID"
// @Param        roleId  path  int  true  "Role ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id}/roles/{roleId} [delete]
func (h *DirectoryHandler) RevokeRole(c echo.Context) error {
	return h.userRole(c, false)
}

func (h *DirectoryHandler) userRole(c echo.Context, grant bool) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	roleID, err := pathID(c, "roleId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if grant {
		err = sess.Directory.GrantRole(ctx, userID, roleID)
	} else {
		err = sess.Directory.RevokeRole(ctx, userID, roleID)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Roles ---

// ListRoles returns every role with its features.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {array}   domain.Role
// @Router       /api/roles [get]
func (h *DirectoryHandler) ListRoles(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	roles, err := sess.Directory.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

// GetRole returns one role.
//
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  domain.Role
// @Failure      404  {object}  map[string]string
// @Router       /api/roles/{id} [get]
func (h *DirectoryHandler) GetRole(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role, err := sess.Directory.GetRole(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// CreateRole adds a role without features.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RoleInput  true  "Role"
// @Success      201   {object}  domain.Role
// @Failure      409   {object}  map[string]string
// @Router       /api/roles [post]
func (h *DirectoryHandler) CreateRole(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var in ports.RoleInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	role, err := sess.Directory.CreateRole(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// UpdateRole renames or redescribes a role.
//
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Role ID"
// @Param        body  body      ports.RoleInput  true  "Role"
// @Success      200   {object}  domain.Role
// @Router       /api/roles/{id} [put]
func (h *DirectoryHandler) UpdateRole(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ports.RoleInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	role, err := sess.Directory.UpdateRole(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// DeleteRole removes a role and its assignments.
//
// @Summary      Delete role
// @Tags         roles
// @Param        id   path  int  true  "Role ID"
// @Success      204
// @Router       /api/roles/{id} [delete]
func (h *DirectoryHandler) DeleteRole(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := sess.Directory.DeleteRole(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddFeature grants a feature to a role.
//
// @Summary      Assign feature to role
// @Tags         roles
// @Accept       json
// @Param        id    path  int             true  "Role ID"
// @Param        body  body  featureRequest  true  "Feature"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /api/roles/{id}/features [post]
func (h *DirectoryHandler) AddFeature(c echo.Context) error {
	return h.roleFeature(c, true)
}

// RemoveFeature takes a feature away from a role.
//
// @Summary      Revoke feature from role
// @Tags         roles
// @Accept       json
// @Param        id    path  int             true  "Role ID"
// @Param        body  body  featureRequest  true  "Feature"
// @Success      204
// @Router       /api/roles/{id}/features [delete]
func (h *DirectoryHandler) RemoveFeature(c echo.Context) error {
	return h.roleFeature(c, false)
}

func (h *DirectoryHandler) roleFeature(c echo.Context, add bool) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req featureRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	f := domain.Feature(req.Feature)
	if !f.Known() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown feature "+req.Feature)
	}
	ctx := c.Request().Context()
	if add {
		err = sess.Directory.AddFeature(ctx, id, f)
	} else {
		err = sess.Directory.RemoveFeature(ctx, id, f)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Features ---

// ListFeatures returns the feature vocabulary with descriptions.
//
// @Summary      List features
// @Tags         roles
// @Produce      json
// @Success      200  {array}  featureView
// @Router       /api/features [get]
func (h *DirectoryHandler) ListFeatures(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	features, err := sess.Directory.ListFeatures(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]featureView, len(features))
	for i, f := range features {
		out[i] = featureView{Feature: f, Description: f.Describe()}
	}
	return c.JSON(http.StatusOK, out)
}
