// Package main is the entry point for the GridPulse service.
//
// It loads configuration, builds the four Source Clients and the Aggregator,
// starts the wall-clock-aligned refresh scheduler, and serves the inbound
// HTTP surface (per-feed proxies and the aggregated snapshot) with the core
// chassis (middleware, rate limiting, health checks).
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM):
// the scheduler stops first so no new cycle fires mid-teardown, then the
// HTTP server drains.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridpulse/internal/aggregate"
	"gridpulse/internal/api/handlers"
	"gridpulse/internal/config"
	"gridpulse/internal/core"
	"gridpulse/internal/feeds"
	"gridpulse/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("gridpulse starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"refresh_period", cfg.Scheduler.Period,
	)

	// One shared transport; each client carries its own circuit breaker.
	httpClient := &http.Client{Timeout: cfg.Feeds.FetchTimeout}

	mixClient := feeds.NewMixClient(httpClient, cfg.Feeds.MixURL, cfg.Feeds.UserAgent)
	emissionsClient := feeds.NewEmissionsClient(httpClient, cfg.Feeds.EmissionsURL, cfg.Feeds.UserAgent)
	pricingClient := feeds.NewPricingClient(httpClient, cfg.Feeds.PricingURL, cfg.Feeds.UserAgent)
	demandClient := feeds.NewDemandClient(httpClient, cfg.Feeds.DemandURL, cfg.Feeds.UserAgent)

	store := aggregate.NewStore()
	aggregator := aggregate.NewAggregator(aggregate.AggregatorConfig{
		Mix:          mixClient,
		Emissions:    emissionsClient,
		Pricing:      pricingClient,
		Demand:       demandClient,
		FetchTimeout: cfg.Feeds.FetchTimeout,
		Logger:       logger,
	})

	runner := scheduler.NewRunner(scheduler.RunnerConfig{
		Period: cfg.Scheduler.Period,
		Cycle: func(ctx context.Context, triggeredAt time.Time) {
			store.Publish(aggregator.Aggregate(ctx, triggeredAt))
		},
		Logger: logger,
	})
	if err := runner.Start(context.Background()); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer runner.Stop()

	// Build the server.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.RateLimitStore = core.NewMemoryRateLimitStore()
	srv.HealthProbes = []core.HealthProbe{
		aggregate.NewFreshnessProbe(store, 3*cfg.Scheduler.Period),
	}

	feedHandler := handlers.NewFeedHandler(mixClient, emissionsClient, pricingClient, demandClient, logger)
	gridHandler := handlers.NewGridHandler(store)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		feedHandler.RegisterRoutes,
		gridHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Stop the scheduler before draining HTTP so no cycle fires mid-teardown.
	// In-flight fetches are abandoned via context cancellation, not awaited.
	logger.Info("initiating graceful shutdown")
	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}
