package permission

import (
	"strings"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

const (
	FallbackInitials = "U"
	FallbackName     = "User"
	FallbackEmail    = "user@example.com"
)

// nameRule is one step of a display fallback chain. Rules are evaluated in
// order and the first matching rule formats the value.
type nameRule struct {
	match  func(u *domain.Identity) bool
	format func(u *domain.Identity) string
}

func hasFullName(u *domain.Identity) bool  { return u.FirstName != "" && u.LastName != "" }
func hasFirstName(u *domain.Identity) bool { return u.FirstName != "" }
func hasUsername(u *domain.Identity) bool  { return u.Username != "" }

// Order: first+last name, first name only, username, literal default.
var displayNameRules = []nameRule{
	{hasFullName, func(u *domain.Identity) string { return u.FirstName + " " + u.LastName }},
	{hasFirstName, func(u *domain.Identity) string { return u.FirstName }},
	{hasUsername, func(u *domain.Identity) string { return u.Username }},
}

var initialsRules = []nameRule{
	{hasFullName, func(u *domain.Identity) string { return strings.ToUpper(prefix(u.FirstName, 1) + prefix(u.LastName, 1)) }},
	{hasFirstName, func(u *domain.Identity) string { return strings.ToUpper(prefix(u.FirstName, 2)) }},
	{hasUsername, func(u *domain.Identity) string { return strings.ToUpper(prefix(u.Username, 2)) }},
}

// DisplayName formats the user's name for headers and menus.
func DisplayName(u *domain.Identity) string {
	return apply(displayNameRules, u, FallbackName)
}

// Initials formats a short avatar label.
func Initials(u *domain.Identity) string {
	return apply(initialsRules, u, FallbackInitials)
}

// DisplayEmail returns the user's email or a placeholder.
func DisplayEmail(u *domain.Identity) string {
	if u == nil || u.Email == "" {
		return FallbackEmail
	}
	return u.Email
}

func apply(rules []nameRule, u *domain.Identity, fallback string) string {
	if u == nil {
		return fallback
	}
	for _, r := range rules {
		if r.match(u) {
			return r.format(u)
		}
	}
	return fallback
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) < n {
		return s
	}
	return string(runes[:n])
}
