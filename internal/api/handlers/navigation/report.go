package navigation

import (
	"io"
	"net/http"

	"Handlecache/internal/api/handlers"
	"Handlecache/internal/bridge"
)

// maxEventBytes bounds a single navigation event body
const maxEventBytes = 16 * 1024

// ReportHandler accepts navigation events over HTTP
type ReportHandler struct {
	dispatcher bridge.Dispatcher
}

// NewReportHandler creates a new navigation report handler
func NewReportHandler(dispatcher bridge.Dispatcher) *ReportHandler {
	return &ReportHandler{dispatcher: dispatcher}
}

// HandleReport dispatches one navigation event and returns without waiting for it
// POST /xrpc/app.handlecache.reportNavigation
// Body: {"tabId": 1, "status": "complete", "url": "https://bsky.app/profile/did:plc:abc"}
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes+1))
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Failed to read request body")
		return
	}
	if len(body) > maxEventBytes {
		handlers.WriteError(w, http.StatusRequestEntityTooLarge, "InvalidRequest", "Event too large")
		return
	}

	ev, err := bridge.DecodeEvent(body)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	// The resolution runs detached from this request
	h.dispatcher.Dispatch(ev)

	handlers.WriteJSON(w, http.StatusAccepted, map[string]interface{}{"accepted": true})
}
