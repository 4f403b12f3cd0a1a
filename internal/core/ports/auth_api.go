package ports

import (
	"context"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// AuthAPI is the credential pipeline as seen by the session layer.
// Every error it returns is a *domain.APIError.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.Identity, error)
	// Logout is best-effort and always leaves the token store empty.
	Logout(ctx context.Context)
	FetchCurrentUser(ctx context.Context) (*domain.Identity, error)
}
