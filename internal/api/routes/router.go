package routes

import (
	"net/http"
	"time"

	"Handlecache/internal/api/handlers/handles"
	"Handlecache/internal/api/middleware"
	"Handlecache/internal/bridge"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the dependencies of the HTTP surface
type RouterConfig struct {
	Dispatcher     bridge.Dispatcher
	Cache          handles.CacheReader
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// RequestsPerMinute per client IP; zero disables rate limiting
	RequestsPerMinute int
}

// NewRouter builds the service router
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestsPerMinute > 0 {
			rateLimiter := middleware.NewRateLimiter(cfg.RequestsPerMinute, 1*time.Minute)
			r.Use(rateLimiter.Middleware)
		}

		RegisterNavigationRoutes(r, cfg.Dispatcher)
		RegisterHandlesRoutes(r, cfg.Cache, cfg.AllowedOrigins)
	})

	return r
}
