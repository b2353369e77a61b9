package memory

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     string
	expiresAt time.Time
}

// SessionStores keeps every scope's keys in one process-local map. It backs
// sessions when Redis is disabled and is lost on restart.
type SessionStores struct {
	mu    sync.Mutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStores returns an empty store. A ttl of zero keeps keys until
// they are deleted.
func NewSessionStores(ttl time.Duration) *SessionStores {
	return &SessionStores{items: map[string]item{}, ttl: ttl, now: time.Now}
}

// For returns the store for scope.
func (m *SessionStores) For(scope string) *SessionStore {
	return &SessionStore{parent: m, scope: scope}
}

func (m *SessionStores) cleanupLocked() {
	now := m.now()
	for k, it := range m.items {
		if !it.expiresAt.IsZero() && now.After(it.expiresAt) {
			delete(m.items, k)
		}
	}
}

// SessionStore is one scope of a SessionStores.
type SessionStore struct {
	parent *SessionStores
	scope  string
}

func (s *SessionStore) Get(_ context.Context, key string) (string, bool, error) {
	m := s.parent
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
	it, ok := m.items[s.key(key)]
	if !ok {
		return "", false, nil
	}
	return it.value, true, nil
}

func (s *SessionStore) Set(_ context.Context, key, value string) error {
	m := s.parent
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
	it := item{value: value}
	if m.ttl > 0 {
		it.expiresAt = m.now().Add(m.ttl)
	}
	m.items[s.key(key)] = it
	return nil
}

func (s *SessionStore) Del(_ context.Context, keys ...string) error {
	m := s.parent
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, s.key(k))
	}
	return nil
}

func (s *SessionStore) key(k string) string { return s.scope + ":" + k }
