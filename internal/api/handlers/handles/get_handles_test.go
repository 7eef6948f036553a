package handles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Handlecache/internal/core/prefetch"
)

// mockCache implements CacheReader for testing
type mockCache struct {
	mapping prefetch.Mapping
	err     error
}

func (m *mockCache) Load(ctx context.Context) (prefetch.Mapping, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.mapping.Clone(), nil
}

func decodeHandles(t *testing.T, w *httptest.ResponseRecorder) prefetch.Mapping {
	t.Helper()
	var resp GetHandlesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Handles
}

func TestGetHandlesHandler_ReturnsWholeCache(t *testing.T) {
	cache := &mockCache{mapping: prefetch.Mapping{
		"did:plc:abc": "alice.example",
		"did:plc:def": "bob.example",
	}}
	handler := NewGetHandlesHandler(cache)

	req := httptest.NewRequest(http.MethodGet, "/xrpc/app.handlecache.getHandles", nil)
	w := httptest.NewRecorder()
	handler.HandleGetHandles(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, cache.mapping, decodeHandles(t, w))
}

func TestGetHandlesHandler_FiltersByDID(t *testing.T) {
	cache := &mockCache{mapping: prefetch.Mapping{
		"did:plc:abc": "alice.example",
		"did:plc:def": "bob.example",
	}}
	handler := NewGetHandlesHandler(cache)

	req := httptest.NewRequest(http.MethodGet, "/xrpc/app.handlecache.getHandles?did=did:plc:abc&did=did:plc:missing", nil)
	w := httptest.NewRecorder()
	handler.HandleGetHandles(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, prefetch.Mapping{"did:plc:abc": "alice.example"}, decodeHandles(t, w))
}

func TestGetHandlesHandler_EmptyCache(t *testing.T) {
	handler := NewGetHandlesHandler(&mockCache{mapping: prefetch.Mapping{}})

	req := httptest.NewRequest(http.MethodGet, "/xrpc/app.handlecache.getHandles", nil)
	w := httptest.NewRecorder()
	handler.HandleGetHandles(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"handles":{}}`, w.Body.String())
}

func TestGetHandlesHandler_StoreFailure(t *testing.T) {
	handler := NewGetHandlesHandler(&mockCache{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/xrpc/app.handlecache.getHandles", nil)
	w := httptest.NewRecorder()
	handler.HandleGetHandles(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CacheUnavailable")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetHandlesHandler_TooManyDIDs(t *testing.T) {
	handler := NewGetHandlesHandler(&mockCache{mapping: prefetch.Mapping{}})

	target := "/xrpc/app.handlecache.getHandles?"
	for i := 0; i <= maxDIDsPerRequest; i++ {
		target += "did=did:plc:x&"
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.HandleGetHandles(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
