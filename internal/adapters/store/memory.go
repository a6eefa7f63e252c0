package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the mapping in process memory; it is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]string)}
}

func (s *MemoryStore) GetReplies(_ context.Context, originalID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data[originalID]), nil
}

func (s *MemoryStore) SetReplies(_ context.Context, originalID string, replyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[originalID] = slices.Clone(replyIDs)
	return nil
}
