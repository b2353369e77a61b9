package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a key-value store scoped to one client session.
// Key format: <prefix>:<scope>:<key>
type SessionStore struct {
	client *redis.Client
	prefix string
	scope  string
	ttl    time.Duration
}

// SessionStores hands out SessionStores sharing one Redis client.
type SessionStores struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStores returns a factory for scoped stores. A ttl of zero keeps
// keys until they are deleted.
func NewSessionStores(client *redis.Client, prefix string, ttl time.Duration) *SessionStores {
	if prefix == "" {
		prefix = "gs"
	}
	return &SessionStores{client: client, prefix: prefix, ttl: ttl}
}

// For returns the store for scope.
func (f *SessionStores) For(scope string) *SessionStore {
	return &SessionStore{client: f.client, prefix: f.prefix, scope: scope, ttl: f.ttl}
}

// Get returns the value for key; found is false when it does not exist.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session store get: %w", err)
	}
	return v, true, nil
}

// Set stores value under key, refreshing the scope's expiry.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store set: %w", err)
	}
	return nil
}

// Del removes keys. Missing keys are not an error.
func (s *SessionStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session store del: %w", err)
	}
	return nil
}

func (s *SessionStore) key(k string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.scope, k)
}
