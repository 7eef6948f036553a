package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	indigoIdentity "github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/syntax"
)

// didDirectory is the subset of Indigo's identity.Directory used for DID lookups
type didDirectory interface {
	LookupDID(ctx context.Context, did syntax.DID) (*indigoIdentity.Identity, error)
}

// baseResolver implements Resolver using Indigo's identity directory
type baseResolver struct {
	directory didDirectory
}

// newBaseResolver creates a new base resolver using Indigo
func newBaseResolver(plcURL string, httpClient *http.Client) *baseResolver {
	// BaseDirectory resolves did:plc against the PLC directory and did:web over
	// HTTPS, then verifies the claimed handle resolves back to the DID
	dir := &indigoIdentity.BaseDirectory{
		PLCURL:     plcURL,
		HTTPClient: *httpClient,
	}

	return &baseResolver{
		directory: dir,
	}
}

// ResolveDID retrieves the DID document and returns the identity it describes
func (r *baseResolver) ResolveDID(ctx context.Context, didStr string) (*Identity, error) {
	didStr = strings.TrimSpace(didStr)

	did, err := syntax.ParseDID(didStr)
	if err != nil {
		return nil, &ErrInvalidIdentifier{
			Identifier: didStr,
			Reason:     fmt.Sprintf("invalid DID format: %v", err),
		}
	}

	ident, err := r.directory.LookupDID(ctx, did)
	if err != nil {
		if isNotFoundError(err) {
			return nil, &ErrNotFound{
				Identifier: didStr,
				Reason:     err.Error(),
			}
		}

		return nil, &ErrResolutionFailed{
			Identifier: didStr,
			Reason:     err.Error(),
		}
	}

	handle := ""
	if !ident.Handle.IsInvalidHandle() {
		handle = ident.Handle.String()
	}

	return &Identity{
		DID:        ident.DID.String(),
		Handle:     handle,
		PDSURL:     ident.PDSEndpoint(),
		ResolvedAt: time.Now().UTC(),
		Method:     ResolutionMethod(did.Method()),
	}, nil
}

// ResolveHandle resolves a DID to its verified handle
func (r *baseResolver) ResolveHandle(ctx context.Context, did string) Resolution {
	return resolutionFor(r.ResolveDID(ctx, did))
}

// resolutionFor converts a DID lookup result into an explicit Resolution
func resolutionFor(ident *Identity, err error) Resolution {
	if err != nil {
		if IsNotFound(err) {
			return Unresolved()
		}
		return Failed(err)
	}

	// An empty handle means the document had none or it failed bidirectional verification
	if ident.Handle == "" {
		return Unresolved()
	}

	return Resolved(ident.Handle)
}

// isNotFoundError checks if a directory error means the DID does not exist
func isNotFoundError(err error) bool {
	if errors.Is(err, indigoIdentity.ErrDIDNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "NoRecordsFound") ||
		strings.Contains(errStr, "404")
}
