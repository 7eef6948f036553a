package memory

import (
	"context"
	"sync"

	"Handlecache/internal/core/prefetch"
)

// KVStore is a process-local prefetch.Store. Contents do not survive restarts;
// use it for development and tests.
type KVStore struct {
	data map[string]prefetch.Mapping
	mu   sync.RWMutex
}

// NewKVStore creates an empty in-memory store
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]prefetch.Mapping)}
}

// Get returns a copy of the mapping under namespace, or nil when absent
func (s *KVStore) Get(ctx context.Context, namespace string) (prefetch.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, ok := s.data[namespace]
	if !ok {
		return nil, nil
	}
	return mapping.Clone(), nil
}

// Set replaces the mapping under namespace with a copy of mapping
func (s *KVStore) Set(ctx context.Context, namespace string, mapping prefetch.Mapping) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[namespace] = mapping.Clone()
	return nil
}
