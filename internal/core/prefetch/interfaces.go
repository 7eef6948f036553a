package prefetch

import (
	"context"

	"Handlecache/internal/atproto/identity"
)

// Extractor finds the identifier in a visited page's URL.
// Implementations must be pure functions of their input.
type Extractor interface {
	Extract(rawURL string) (Extraction, bool)
}

// HandleResolver resolves a DID to its handle.
// identity.Resolver satisfies this interface.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, did string) identity.Resolution
}

// Store is a durable key-value store holding whole mappings under a namespaced key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the mapping stored under namespace, or nil with no error when absent
	Get(ctx context.Context, namespace string) (Mapping, error)

	// Set replaces the mapping stored under namespace
	Set(ctx context.Context, namespace string, mapping Mapping) error
}
