package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/service/notify"
	"MarketLens/pkg/config"
	xhttp "MarketLens/pkg/http"
	applogger "MarketLens/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	hub        *notify.Hub
	httpServer *xhttp.Server
	closers    []func() error
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	hub *notify.Hub,
	handler xhttp.Handler,
) *App {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	return &App{
		cfg:        cfg,
		logger:     logger,
		hub:        hub,
		httpServer: xhttp.NewServer(handler, opts...),
	}
}

// AddCloser registers a resource to release on shutdown, in LIFO order.
func (a *App) AddCloser(fn func() error) { a.closers = append(a.closers, fn) }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.hub.Start()

	// Warnings and errors also fan out to connected websocket clients.
	a.logger.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   10 * time.Second,
		CountThreshold: 50,
		Topic:          notify.EventLog,
		Publisher:      a.hub,
	})

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.hub.Stop()
	a.logger.RemoveCollector()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
