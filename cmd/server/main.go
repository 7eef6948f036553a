package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"Handlecache/internal/api/routes"
	"Handlecache/internal/atproto/identity"
	"Handlecache/internal/bridge"
	"Handlecache/internal/config"
	"Handlecache/internal/core/prefetch"
	"Handlecache/internal/db/memory"
	postgresStore "Handlecache/internal/db/postgres"
	redisStore "Handlecache/internal/db/redis"
)

func main() {
	cfg, err := config.Load(".env.dev", ".env")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	resolver := identity.NewResolver(identity.Config{
		PLCURL:            cfg.PLCURL,
		HTTPClient:        &http.Client{Timeout: cfg.ResolverTimeout},
		RequestsPerSecond: cfg.ResolverRate,
		Burst:             cfg.ResolverBurst,
	})

	cache := prefetch.NewHandleCache(store, cfg.CacheNamespace)
	manager := prefetch.NewManager(
		prefetch.NewURLExtractor(cfg.ExtractorHosts),
		resolver,
		cache,
		prefetch.Config{
			Enabled:     cfg.PrefetchEnabled,
			BaseContext: ctx,
			Metrics:     prefetch.NewMetrics(reg),
		},
	)
	if !cfg.PrefetchEnabled {
		log.Println("Prefetch disabled: navigation events will be ignored")
	}

	if cfg.BridgeWSURL != "" {
		consumer := bridge.NewNavigationConsumer(manager, cfg.BridgeWSURL)
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Navigation consumer stopped: %v", err)
			}
		}()
	}

	router := routes.NewRouter(routes.RouterConfig{
		Dispatcher:        manager,
		Cache:             cache,
		Gatherer:          reg,
		AllowedOrigins:    cfg.AllowedOrigins,
		RequestsPerMinute: cfg.HTTPRateLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Handlecache starting on port %s (store: %s, namespace: %s)", cfg.Port, cfg.StoreBackend, cfg.CacheNamespace)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// In-flight resolutions see the cancelled base context and finish quickly
	manager.Shutdown()
}

// openStore opens the configured durable store and returns a function releasing it
func openStore(ctx context.Context, cfg *config.Config) (prefetch.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Println("Connected to PostgreSQL")

		if err := goose.SetDialect("postgres"); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := goose.Up(db, "internal/db/migrations"); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Println("Migrations completed successfully")

		return postgresStore.NewKVStore(db), func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client, err := redisStore.NewClient(ctx, redisStore.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Println("Connected to Redis")

		return redisStore.NewKVStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil

	default:
		log.Println("WARNING: using in-memory store, the handle cache will not survive restarts")
		return memory.NewKVStore(), func() {}, nil
	}
}
