// Package session holds the bearer credential used against the upstream
// attendance server. The credential can live in two places: the persistent
// store (redis, survives restarts) and an ephemeral in-process slot. The
// resolution rule is fixed: persistent first, then ephemeral.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKey = "qrattend:upstream-token"

// Store resolves and invalidates the upstream credential.
type Store struct {
	redis *redis.Client
	ttl   time.Duration

	mu        sync.RWMutex
	ephemeral string
}

// NewStore creates a store. redis may be nil, leaving only the ephemeral slot.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: rdb, ttl: ttl}
}

// Token returns the current credential, preferring the persistent store.
func (s *Store) Token(ctx context.Context) string {
	if s.redis != nil {
		if token, err := s.redis.Get(ctx, tokenKey).Result(); err == nil && token != "" {
			return token
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ephemeral
}

// SetPersistent stores the credential in redis.
func (s *Store) SetPersistent(ctx context.Context, token string) error {
	if s.redis == nil {
		s.SetEphemeral(token)
		return nil
	}
	return s.redis.Set(ctx, tokenKey, token, s.ttl).Err()
}

// SetEphemeral stores the credential only for this process.
func (s *Store) SetEphemeral(token string) {
	s.mu.Lock()
	s.ephemeral = token
	s.mu.Unlock()
}

// Invalidate clears both locations. Called on upstream 401 responses.
func (s *Store) Invalidate(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, tokenKey).Err()
	}
	s.SetEphemeral("")
}
