package ports

import (
	"context"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// TokenStore persists the access/refresh token pair of one browser session.
// Save and Clear write both tokens together; a reader never sees a new
// access token next to an old refresh token.
type TokenStore interface {
	// Load returns the zero Tokens when nothing is stored.
	Load(ctx context.Context) (domain.Tokens, error)
	Save(ctx context.Context, tokens domain.Tokens) error
	Clear(ctx context.Context) error
}

// TokenStores hands out the token store of each browser session.
type TokenStores interface {
	ForSession(sessionID string) TokenStore
}
