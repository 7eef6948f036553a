package identity

import "context"

// Resolver resolves atProto DIDs to their verified handles
type Resolver interface {
	// ResolveDID looks up the DID document and returns the identity it describes.
	// Returns *ErrNotFound when the DID does not exist.
	ResolveDID(ctx context.Context, did string) (*Identity, error)

	// ResolveHandle resolves a DID to its handle. It never returns an error;
	// failures are reported through the Resolution status.
	ResolveHandle(ctx context.Context, did string) Resolution
}
