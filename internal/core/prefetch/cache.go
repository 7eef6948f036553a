package prefetch

import (
	"context"
	"errors"
	"fmt"
)

// DefaultNamespace is the store key holding the DID -> handle mapping
const DefaultNamespace = "didHandleCache"

// HandleCache owns the persisted DID -> handle mapping.
// Every access is a full-mapping read or write against the store.
type HandleCache struct {
	store     Store
	namespace string
}

// NewHandleCache creates a cache persisted under namespace in store
func NewHandleCache(store Store, namespace string) *HandleCache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &HandleCache{
		store:     store,
		namespace: namespace,
	}
}

// Namespace returns the store key the cache lives under
func (c *HandleCache) Namespace() string {
	return c.namespace
}

// Load reads the whole mapping. A cache that was never written loads as empty.
func (c *HandleCache) Load(ctx context.Context) (Mapping, error) {
	mapping, err := c.store.Get(ctx, c.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read handle cache: %w", err)
	}
	if mapping == nil {
		mapping = Mapping{}
	}
	return mapping, nil
}

// MergeSet writes base plus the single entry did -> handle in one store write.
// base is not modified.
func (c *HandleCache) MergeSet(ctx context.Context, base Mapping, did, handle string) error {
	if did == "" || handle == "" {
		return errors.New("handle cache entries need a DID and a handle")
	}

	merged := base.Clone()
	merged[did] = handle

	if err := c.store.Set(ctx, c.namespace, merged); err != nil {
		return fmt.Errorf("failed to write handle cache: %w", err)
	}
	return nil
}
