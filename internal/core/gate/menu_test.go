package gate

import (
	"testing"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/routes"
)

func paths(ds []routes.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}

func TestFilterMenu(t *testing.T) {
	g := New(nil)
	tests := []struct {
		name string
		user *domain.Identity
		want []string
	}{
		{"no user sees open entries", nil, []string{routes.Dashboard}},
		{"users only", userWith(domain.FeatureListUsers), []string{routes.Dashboard, routes.Users}},
		{"roles only", userWith(domain.FeatureListRoles), []string{routes.Dashboard, routes.Roles}},
		{"both in declaration order", userWith(domain.FeatureListRoles, domain.FeatureListUsers), []string{routes.Dashboard, routes.Users, routes.Roles}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := paths(g.FilterMenu(tc.user, routes.MenuItems()))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestForRoute_OpenDescriptorBypasses(t *testing.T) {
	req := ForRoute(routes.MustLookup(routes.Dashboard), AllOf)
	if !req.Bypass {
		t.Fatalf("descriptor without features must bypass")
	}
	req = ForRoute(routes.MustLookup(routes.Users), AllOf)
	if req.Bypass || len(req.Features) == 0 {
		t.Fatalf("users route must be gated, got %+v", req)
	}
}
