package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const (
	defaultKeyPrefix = "dashboard"
	accessTokenKey   = "access_token"
	refreshTokenKey  = "refresh_token"
)

// TokenStore persists session tokens in Redis.
// Key format: <prefix>:session:<session_id>:{access_token,refresh_token}
// Both keys are written and deleted in one MULTI/EXEC transaction and share
// the same TTL, so they expire together.
type TokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore. A zero ttl keeps tokens until cleared.
func NewTokenStore(client *redis.Client, prefix string, ttl time.Duration) *TokenStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &TokenStore{client: client, prefix: prefix, ttl: ttl}
}

// ForSession returns the token store scoped to one browser session.
func (s *TokenStore) ForSession(sessionID string) ports.TokenStore {
	return &sessionTokens{store: s, sessionID: sessionID}
}

type sessionTokens struct {
	store     *TokenStore
	sessionID string
}

func (t *sessionTokens) key(name string) string {
	return fmt.Sprintf("%s:session:%s:%s", t.store.prefix, t.sessionID, name)
}

func (t *sessionTokens) Load(ctx context.Context) (domain.Tokens, error) {
	vals, err := t.store.client.MGet(ctx, t.key(accessTokenKey), t.key(refreshTokenKey)).Result()
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("load tokens: %w", err)
	}
	access, _ := vals[0].(string)
	refresh, _ := vals[1].(string)
	return domain.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *sessionTokens) Save(ctx context.Context, tokens domain.Tokens) error {
	if tokens.AccessToken == "" {
		return errors.New("save tokens: empty access token")
	}
	_, err := t.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, t.key(accessTokenKey), tokens.AccessToken, t.store.ttl)
		if tokens.RefreshToken == "" {
			pipe.Del(ctx, t.key(refreshTokenKey))
		} else {
			pipe.Set(ctx, t.key(refreshTokenKey), tokens.RefreshToken, t.store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (t *sessionTokens) Clear(ctx context.Context) error {
	if err := t.store.client.Del(ctx, t.key(accessTokenKey), t.key(refreshTokenKey)).Err(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
