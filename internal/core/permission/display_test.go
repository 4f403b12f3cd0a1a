package permission

import (
	"testing"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *domain.Identity
		want string
	}{
		{"full name", &domain.Identity{FirstName: "Jane", LastName: "Doe", Username: "jdoe"}, "Jane Doe"},
		{"first name only", &domain.Identity{FirstName: "Jane", Username: "jdoe"}, "Jane"},
		{"last name only falls through", &domain.Identity{LastName: "Doe", Username: "jdoe"}, "jdoe"},
		{"username", &domain.Identity{Username: "jdoe"}, "jdoe"},
		{"empty", &domain.Identity{}, "User"},
		{"nil", nil, "User"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.user); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		user *domain.Identity
		want string
	}{
		{"full name", &domain.Identity{FirstName: "jane", LastName: "doe"}, "JD"},
		{"first name only", &domain.Identity{FirstName: "jane"}, "JA"},
		{"single letter first name", &domain.Identity{FirstName: "j"}, "J"},
		{"username", &domain.Identity{Username: "admin"}, "AD"},
		{"multibyte", &domain.Identity{FirstName: "Élodie", LastName: "Ñúñez"}, "ÉÑ"},
		{"empty", &domain.Identity{}, "U"},
		{"nil", nil, "U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initials(tt.user); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDisplayEmail(t *testing.T) {
	if got := DisplayEmail(&domain.Identity{Email: "jane@corp.io"}); got != "jane@corp.io" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := DisplayEmail(&domain.Identity{}); got != FallbackEmail {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := DisplayEmail(nil); got != FallbackEmail {
		t.Fatalf("expected fallback for nil, got %q", got)
	}
}
