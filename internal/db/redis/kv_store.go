package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"Handlecache/internal/core/prefetch"
)

// kvStore implements prefetch.Store with one JSON string value per namespace
type kvStore struct {
	r redis.Cmdable
	// optional key prefix shared by every namespace
	prefix string
}

// NewKVStore creates a Redis-backed namespaced key-value store
func NewKVStore(r redis.Cmdable, prefix string) prefetch.Store {
	return &kvStore{r: r, prefix: prefix}
}

func (s *kvStore) key(namespace string) string {
	if s.prefix == "" {
		return namespace
	}
	return s.prefix + ":" + namespace
}

// Get returns the mapping stored under namespace, or nil when the key is absent
func (s *kvStore) Get(ctx context.Context, namespace string) (prefetch.Mapping, error) {
	raw, err := s.r.Get(ctx, s.key(namespace)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace %s: %w", namespace, err)
	}

	mapping := prefetch.Mapping{}
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("failed to decode namespace %s: %w", namespace, err)
	}
	return mapping, nil
}

// Set replaces the mapping under namespace. Keys never expire.
func (s *kvStore) Set(ctx context.Context, namespace string, mapping prefetch.Mapping) error {
	if mapping == nil {
		mapping = prefetch.Mapping{}
	}

	raw, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to encode namespace %s: %w", namespace, err)
	}

	if err := s.r.Set(ctx, s.key(namespace), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write namespace %s: %w", namespace, err)
	}
	return nil
}
