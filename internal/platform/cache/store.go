package cache

import (
	"context"
	"sync"
	"time"
)

type record struct {
	value     any
	expiresAt time.Time
}

// Store is a session-scoped keyed store with an optional TTL.
// A zero TTL keeps entries until they are overwritten or deleted.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		records: make(map[string]record),
		ttl:     ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	r, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !r.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.records, key)
		s.mu.Unlock()
		return nil, false
	}

	return r.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.records[key] = record{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}
