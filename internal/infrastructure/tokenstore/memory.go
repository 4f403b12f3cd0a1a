// Package tokenstore holds the in-process token store used in development
// and tests. Production deployments use the Redis store.
package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const (
	defaultMaxSessions = 10000
	defaultTTL         = 24 * time.Hour
)

// ErrEmptyAccessToken is returned by Save for a pair without an access token.
var ErrEmptyAccessToken = errors.New("save tokens: empty access token")

// Memory keeps token pairs per session. Like the Redis store, entries expire
// after a TTL; the least recently used pair is dropped once the store is full.
// A pair is always replaced as a whole.
type Memory struct {
	tokens *expirable.LRU[string, domain.Tokens]
}

// NewMemory returns a store holding up to 10000 sessions for 24 hours each.
func NewMemory() *Memory {
	return NewBoundedMemory(defaultMaxSessions, defaultTTL)
}

// NewBoundedMemory returns a store holding at most maxSessions pairs, each
// kept for ttl after its last save.
func NewBoundedMemory(maxSessions int, ttl time.Duration) *Memory {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{tokens: expirable.NewLRU[string, domain.Tokens](maxSessions, nil, ttl)}
}

func (m *Memory) ForSession(sessionID string) ports.TokenStore {
	return &memorySession{m: m, id: sessionID}
}

// Len returns the number of sessions holding tokens.
func (m *Memory) Len() int {
	return m.tokens.Len()
}

type memorySession struct {
	m  *Memory
	id string
}

func (s *memorySession) Load(context.Context) (domain.Tokens, error) {
	tokens, _ := s.m.tokens.Get(s.id)
	return tokens, nil
}

func (s *memorySession) Save(_ context.Context, tokens domain.Tokens) error {
	if tokens.AccessToken == "" {
		return ErrEmptyAccessToken
	}
	s.m.tokens.Add(s.id, tokens)
	return nil
}

func (s *memorySession) Clear(context.Context) error {
	s.m.tokens.Remove(s.id)
	return nil
}
