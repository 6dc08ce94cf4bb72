package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair in memory. The zero value is ready to use.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
	set  bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, pair Pair) error {
	if !pair.Valid() {
		return ErrIncompletePair
	}
	s.mu.Lock()
	s.pair, s.set = pair, true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (Pair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.set, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.pair, s.set = Pair{}, false
	s.mu.Unlock()
	return nil
}
