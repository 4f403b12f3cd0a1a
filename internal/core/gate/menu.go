package gate

import (
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/routes"
)

// ForRoute builds the requirement for a route descriptor in the given mode.
// Descriptors without features bypass evaluation.
func ForRoute(d routes.Descriptor, mode Mode) Requirement {
	return Requirement{
		Features: d.Features,
		Mode:     mode,
		Bypass:   d.Open(),
	}
}

// FilterMenu returns the menu descriptors u may see, preserving order.
// Entries the user cannot reach are silently hidden.
func (g *Gate) FilterMenu(u *domain.Identity, items []routes.Descriptor) []routes.Descriptor {
	visible := make([]routes.Descriptor, 0, len(items))
	for _, item := range items {
		req := ForRoute(item, AnyOf)
		req.HideFallback = true
		if g.Check(u, req).Allowed() {
			visible = append(visible, item)
		}
	}
	return visible
}
