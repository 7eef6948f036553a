package handles

import (
	"context"
	"log"
	"net/http"

	"Handlecache/internal/api/handlers"
	"Handlecache/internal/core/prefetch"
)

// maxDIDsPerRequest bounds the did filter
const maxDIDsPerRequest = 100

// CacheReader reads the whole DID -> handle mapping. *prefetch.HandleCache implements it.
type CacheReader interface {
	Load(ctx context.Context) (prefetch.Mapping, error)
}

// GetHandlesResponse is the body of getHandles
type GetHandlesResponse struct {
	Handles prefetch.Mapping `json:"handles"`
}

// GetHandlesHandler serves cached handles to the companion UI
type GetHandlesHandler struct {
	cache CacheReader
}

// NewGetHandlesHandler creates a new get handles handler
func NewGetHandlesHandler(cache CacheReader) *GetHandlesHandler {
	return &GetHandlesHandler{cache: cache}
}

// HandleGetHandles returns cached handles, optionally only for the requested DIDs.
// DIDs that are not cached are omitted.
// GET /xrpc/app.handlecache.getHandles?did=did:plc:abc&did=did:plc:def
func (h *GetHandlesHandler) HandleGetHandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dids := r.URL.Query()["did"]
	if len(dids) > maxDIDsPerRequest {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "too many did parameters")
		return
	}

	mapping, err := h.cache.Load(r.Context())
	if err != nil {
		log.Printf("[HANDLES-HANDLER] Failed to load handle cache: %v", err)
		handlers.WriteError(w, http.StatusServiceUnavailable, "CacheUnavailable", "Handle cache is unavailable")
		return
	}

	if len(dids) > 0 {
		filtered := make(prefetch.Mapping, len(dids))
		for _, did := range dids {
			if handle, ok := mapping[did]; ok {
				filtered[did] = handle
			}
		}
		mapping = filtered
	}

	handlers.WriteJSON(w, http.StatusOK, GetHandlesResponse{Handles: mapping})
}
