package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"golang.org/x/time/rate"
)

// limitedResolver throttles lookups against the identity directory and
// stops calling a DID method's upstream while it keeps failing
type limitedResolver struct {
	base    Resolver
	limiter *rate.Limiter
	breaker *circuitBreaker
}

// newLimitedResolver wraps base with a token bucket and a circuit breaker.
// A nil limiter disables throttling.
func newLimitedResolver(base Resolver, limiter *rate.Limiter, breaker *circuitBreaker) *limitedResolver {
	return &limitedResolver{
		base:    base,
		limiter: limiter,
		breaker: breaker,
	}
}

// ResolveDID resolves a DID through the wrapped resolver
func (r *limitedResolver) ResolveDID(ctx context.Context, didStr string) (*Identity, error) {
	didStr = strings.TrimSpace(didStr)

	did, err := syntax.ParseDID(didStr)
	if err != nil {
		return nil, &ErrInvalidIdentifier{
			Identifier: didStr,
			Reason:     fmt.Sprintf("invalid DID format: %v", err),
		}
	}
	upstream := "did:" + did.Method()

	if ok, err := r.breaker.canAttempt(upstream); !ok {
		return nil, err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	ident, err := r.base.ResolveDID(ctx, didStr)
	if err != nil {
		// Not found is an answer from a healthy directory
		var failed *ErrResolutionFailed
		if errors.As(err, &failed) {
			r.breaker.recordFailure(upstream, err)
		} else {
			r.breaker.recordSuccess(upstream)
		}
		return nil, err
	}

	r.breaker.recordSuccess(upstream)
	return ident, nil
}

// ResolveHandle resolves a DID to its verified handle
func (r *limitedResolver) ResolveHandle(ctx context.Context, did string) Resolution {
	return resolutionFor(r.ResolveDID(ctx, did))
}
