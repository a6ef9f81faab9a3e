package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with TTL support, used for tests and
// for running without Redis.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	expiry map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.expiry[key]; ok && time.Now().After(deadline) {
		delete(s.data, key)
		delete(s.expiry, key)
		return "", false, nil
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry[key] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.expiry, key)
	return nil
}
