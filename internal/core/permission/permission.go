// Package permission derives a user's effective feature set from their roles
// and answers access questions about it. Every function is pure and safe to
// call with a nil identity; absent data degrades to an empty permission set.
package permission

import (
	"sort"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// Set is a deduplicated collection of features.
type Set map[domain.Feature]struct{}

// Has reports whether f is in the set.
func (s Set) Has(f domain.Feature) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the features in lexical order.
func (s Set) Sorted() []domain.Feature {
	out := make([]domain.Feature, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllPermissions is the union of the features of every role held by u.
func AllPermissions(u *domain.Identity) Set {
	set := make(Set)
	if u == nil {
		return set
	}
	for _, role := range u.Roles {
		for _, f := range role.Features {
			set[f] = struct{}{}
		}
	}
	return set
}

// HasPermission reports whether u holds f through any role.
func HasPermission(u *domain.Identity, f domain.Feature) bool {
	return AllPermissions(u).Has(f)
}

// HasAllPermissions reports whether u holds every feature in required.
// An empty requirement is satisfied by anyone, including a nil user.
func HasAllPermissions(u *domain.Identity, required []domain.Feature) bool {
	return hasAll(AllPermissions(u), required)
}

// HasAnyPermission reports whether u holds at least one feature in required.
// An empty requirement is never satisfied.
func HasAnyPermission(u *domain.Identity, required []domain.Feature) bool {
	return hasAny(AllPermissions(u), required)
}

// UserRoleNames lists the non-empty role names of u in assignment order.
func UserRoleNames(u *domain.Identity) []string {
	if u == nil {
		return []string{}
	}
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		if role.Name != "" {
			names = append(names, role.Name)
		}
	}
	return names
}

// HasRole reports whether u holds a role with the given name.
func HasRole(u *domain.Identity, name string) bool {
	for _, n := range UserRoleNames(u) {
		if n == name {
			return true
		}
	}
	return false
}

func hasAll(held Set, required []domain.Feature) bool {
	for _, f := range required {
		if !held.Has(f) {
			return false
		}
	}
	return true
}

func hasAny(held Set, required []domain.Feature) bool {
	for _, f := range required {
		if held.Has(f) {
			return true
		}
	}
	return false
}
