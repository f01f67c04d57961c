package credstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and short-lived processes.
type MemoryStore struct {
	mu     sync.RWMutex
	pair   TokenPair
	locale string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Pair(_ context.Context) (TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, nil
}

func (s *MemoryStore) SetPair(_ context.Context, pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
	return nil
}

func (s *MemoryStore) Locale(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale, nil
}

func (s *MemoryStore) SetLocale(_ context.Context, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
	return nil
}
