// Package routes is the static table of dashboard pages and the features
// each one requires. It carries no runtime logic beyond lookups; path
// parameters such as ":id" are substituted by callers.
package routes

import (
	"strings"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

const (
	Root       = "/"
	Login      = "/login"
	Dashboard  = "/dashboard"
	Users      = "/dashboard/users"
	UserCreate = "/dashboard/users/new"
	UserDetail = "/dashboard/users/:id"
	UserEdit   = "/dashboard/users/:id/edit"
	UserManage = "/dashboard/users/:id/manage"
	Roles      = "/dashboard/roles"
	RoleCreate = "/dashboard/roles/new"
	RoleDetail = "/dashboard/roles/:id"
	RoleEdit   = "/dashboard/roles/:id/edit"
	RoleManage = "/dashboard/roles/:id/manage"
)

// Descriptor describes one dashboard page. A descriptor without Features is
// reachable by any authenticated user.
type Descriptor struct {
	Path     string           `json:"path"`
	Label    string           `json:"label"`
	Features []domain.Feature `json:"features,omitempty"`
	MenuItem bool             `json:"isMenuItem,omitempty"`
	Icon     string           `json:"icon,omitempty"`
}

// Open reports whether the descriptor has no feature requirement.
func (d Descriptor) Open() bool {
	return len(d.Features) == 0
}

func features(fs ...domain.Feature) []domain.Feature { return fs }

var table = []Descriptor{
	{Path: Dashboard, Label: "Home Dashboard", MenuItem: true, Icon: "home"},
	{Path: Users, Label: "Users", Features: features(domain.FeatureListUsers), MenuItem: true, Icon: "users"},
	{Path: UserCreate, Label: "Add User", Features: features(domain.FeatureCreateUser)},
	{Path: UserDetail, Label: "User", Features: features(domain.FeatureListUsers)},
	{Path: UserEdit, Label: "Edit User", Features: features(domain.FeatureUpdateUser)},
	{Path: UserManage, Label: "Manage User Roles", Features: features(domain.FeatureAssignRoleToUser, domain.FeatureRevokeRoleFromUser)},
	{Path: Roles, Label: "Roles", Features: features(domain.FeatureListRoles), MenuItem: true, Icon: "lock"},
	{Path: RoleCreate, Label: "Add Role", Features: features(domain.FeatureCreateRole)},
	{Path: RoleDetail, Label: "Role", Features: features(domain.FeatureListRoles)},
	{Path: RoleEdit, Label: "Edit Role", Features: features(domain.FeatureUpdateRole)},
	{Path: RoleManage, Label: "Manage Role Features", Features: features(domain.FeatureAssignFeatureToRole, domain.FeatureRevokeFeatureFromRole)},
}

// All returns every descriptor in declaration order.
func All() []Descriptor {
	return clone(table)
}

// MenuItems returns the descriptors flagged for the navigation menu, in
// declaration order.
func MenuItems() []Descriptor {
	out := make([]Descriptor, 0, len(table))
	for _, d := range table {
		if d.MenuItem {
			out = append(out, cloneOne(d))
		}
	}
	return out
}

// Lookup finds the descriptor declared for path. Path must be the pattern
// ("/dashboard/users/:id"), not a substituted location.
func Lookup(path string) (Descriptor, bool) {
	for _, d := range table {
		if d.Path == path {
			return cloneOne(d), true
		}
	}
	return Descriptor{}, false
}

// Match finds the descriptor whose pattern matches a concrete location such
// as "/dashboard/users/42". Query strings are ignored. Patterns are tried in
// declaration order, so static segments declared first win over parameters.
func Match(location string) (Descriptor, bool) {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if len(location) > 1 {
		location = strings.TrimSuffix(location, "/")
	}
	segs := strings.Split(location, "/")
	for _, d := range table {
		if matches(strings.Split(d.Path, "/"), segs) {
			return cloneOne(d), true
		}
	}
	return Descriptor{}, false
}

func matches(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}

// Parent returns the page enclosing path, used as the back target of a
// denial. Top-level pages fall back to the home dashboard.
func Parent(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 || path[:i] == Dashboard {
		return Dashboard
	}
	return strings.TrimSuffix(path[:i], "/:id")
}

// MustLookup is Lookup for paths declared in this package.
func MustLookup(path string) Descriptor {
	d, ok := Lookup(path)
	if !ok {
		panic("routes: no descriptor for " + path)
	}
	return d
}

func clone(ds []Descriptor) []Descriptor {
	out := make([]Descriptor, len(ds))
	for i, d := range ds {
		out[i] = cloneOne(d)
	}
	return out
}

func cloneOne(d Descriptor) Descriptor {
	if d.Features != nil {
		d.Features = append([]domain.Feature(nil), d.Features...)
	}
	return d
}
