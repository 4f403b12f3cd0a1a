package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

var _ ports.DirectoryAPI = (*Client)(nil)

const (
	usersPath    = "/api/v1/users"
	rolesPath    = "/api/v1/roles"
	featuresPath = "/api/v1/features"
)

func userPath(id int64) string { return fmt.Sprintf("%s/%d", usersPath, id) }
func rolePath(id int64) string { return fmt.Sprintf("%s/%d", rolesPath, id) }

func userRolePath(userID, roleID int64) string {
	return fmt.Sprintf("%s/%d/roles/%d", usersPath, userID, roleID)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var ws []wireUser
	if err := c.do(ctx, call{method: http.MethodGet, path: usersPath}, &ws); err != nil {
		return nil, err
	}
	users := make([]domain.User, len(ws))
	for i, w := range ws {
		users[i] = w.toDomain()
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return c.userCall(ctx, http.MethodGet, userPath(id), nil)
}

func (c *Client) CreateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	return c.userCall(ctx, http.MethodPost, usersPath, in)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in ports.UserInput) (*domain.User, error) {
	return c.userCall(ctx, http.MethodPut, userPath(id), in)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: userPath(id)}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, id int64, in ports.PasswordReset) error {
	return c.do(ctx, call{method: http.MethodPut, path: userPath(id) + "/password", body: in}, nil)
}

func (c *Client) GrantRole(ctx context.Context, userID, roleID int64) error {
	return c.do(ctx, call{method: http.MethodPost, path: userRolePath(userID, roleID)}, nil)
}

func (c *Client) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: userRolePath(userID, roleID)}, nil)
}

func (c *Client) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var ws []wireRole
	if err := c.do(ctx, call{method: http.MethodGet, path: rolesPath}, &ws); err != nil {
		return nil, err
	}
	return rolesToDomain(ws), nil
}

func (c *Client) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	return c.roleCall(ctx, http.MethodGet, rolePath(id), nil)
}

func (c *Client) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	return c.roleCall(ctx, http.MethodPost, rolesPath, in)
}

func (c *Client) UpdateRole(ctx context.Context, id int64, in ports.RoleInput) (*domain.Role, error) {
	return c.roleCall(ctx, http.MethodPut, rolePath(id), in)
}

func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: rolePath(id)}, nil)
}

func (c *Client) AddFeature(ctx context.Context, roleID int64, f domain.Feature) error {
	return c.do(ctx, call{method: http.MethodPost, path: rolePath(roleID) + "/features", body: featureRequest{Feature: string(f)}}, nil)
}

func (c *Client) RemoveFeature(ctx context.Context, roleID int64, f domain.Feature) error {
	return c.do(ctx, call{method: http.MethodDelete, path: rolePath(roleID) + "/features", body: featureRequest{Feature: string(f)}}, nil)
}

func (c *Client) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	var names []string
	if err := c.do(ctx, call{method: http.MethodGet, path: featuresPath}, &names); err != nil {
		return nil, err
	}
	features := make([]domain.Feature, len(names))
	for i, n := range names {
		features[i] = domain.Feature(n)
	}
	return features, nil
}

func (c *Client) userCall(ctx context.Context, method, path string, body any) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, call{method: method, path: path, body: body}, &w); err != nil {
		return nil, err
	}
	u := w.toDomain()
	return &u, nil
}

func (c *Client) roleCall(ctx context.Context, method, path string, body any) (*domain.Role, error) {
	var w wireRole
	if err := c.do(ctx, call{method: method, path: path, body: body}, &w); err != nil {
		return nil, err
	}
	r := w.toDomain()
	return &r, nil
}
