package routes

import (
	"Handlecache/internal/api/handlers/navigation"
	"Handlecache/internal/bridge"

	"github.com/go-chi/chi/v5"
)

// RegisterNavigationRoutes registers the navigation event intake endpoint
func RegisterNavigationRoutes(r chi.Router, dispatcher bridge.Dispatcher) {
	reportHandler := navigation.NewReportHandler(dispatcher)

	// POST /xrpc/app.handlecache.reportNavigation
	// Called by the extension host for every tab status change
	r.Post("/xrpc/app.handlecache.reportNavigation", reportHandler.HandleReport)
}
