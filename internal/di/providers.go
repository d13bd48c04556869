package di

import (
	"fmt"

	"MarketLens/internal/domain/repository"
	"MarketLens/internal/handler/api"
	"MarketLens/internal/service/notify"
	"MarketLens/internal/service/store"
	"MarketLens/internal/usecase"
	"MarketLens/pkg/cache"
	"MarketLens/pkg/config"
	xhttp "MarketLens/pkg/http"
	applogger "MarketLens/pkg/logger"
	"MarketLens/pkg/metrics"
	"MarketLens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the view cache for the configured backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
		), nil
	case "redis":
		c, err := cache.NewRedisCache(redisOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case "layered":
		rc, err := cache.NewRedisCache(redisOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.Memory.MaxSize),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func redisOptions(cfg *config.Config) []cache.RedisOption {
	return []cache.RedisOption{
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	}
}

// ProvideStore creates the in-memory dataset store.
func ProvideStore() *store.Store {
	return store.New()
}

// ProvideHub creates the websocket event hub.
func ProvideHub(l *applogger.Logger) *notify.Hub {
	return notify.NewHub(l)
}

// ProvideIngestor creates the ingestion use case.
func ProvideIngestor(
	st *store.Store,
	c cache.Service,
	m repository.Metrics,
	hub *notify.Hub,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Ingestor {
	return usecase.NewIngestor(st, c, m, hub, l, cfg.Ingest.Workers)
}

// ProvideQueryEngine creates the query use case.
func ProvideQueryEngine(
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.QueryEngine {
	return usecase.NewQueryEngine(c, m, l, cfg.Cache.ViewTTL)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	l *applogger.Logger,
	ingestor *usecase.Ingestor,
	engine *usecase.QueryEngine,
	st *store.Store,
	hub *notify.Hub,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewChartsEchoHandler(l, ingestor, engine, st, hub, api.IngestLimits{
		MaxFiles:     cfg.Ingest.MaxFiles,
		MaxFileBytes: cfg.Ingest.MaxFileBytes,
		RateCapacity: cfg.Ingest.RateLimit.Capacity,
		RateRefill:   cfg.Ingest.RateLimit.RefillPerSec,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	hub *notify.Hub,
	h xhttp.Handler,
	c cache.Service,
) *server.App {
	app := server.New(cfg, l, hub, h)
	if closer, ok := c.(interface{ Close() error }); ok {
		app.AddCloser(closer.Close)
	}
	return app
}
