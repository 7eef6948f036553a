package routes

import (
	"net/http"

	"Handlecache/internal/api/handlers/handles"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterHandlesRoutes registers the read-only cache endpoint used by the companion UI
func RegisterHandlesRoutes(r chi.Router, cache handles.CacheReader, allowedOrigins []string) {
	getHandlesHandler := handles.NewGetHandlesHandler(cache)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	// GET /xrpc/app.handlecache.getHandles
	// Public, read-only
	r.With(corsMiddleware).Get("/xrpc/app.handlecache.getHandles", getHandlesHandler.HandleGetHandles)
	r.With(corsMiddleware).Options("/xrpc/app.handlecache.getHandles", func(w http.ResponseWriter, r *http.Request) {})
}
