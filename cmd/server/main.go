// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Command server runs the public-data gateway: credential registry,
// token-bucket rate limiter, response cache, upstream client and
// coordinate engine behind a chi HTTP surface, supervised by suture.
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

	"github.com/joonake9644/public-api/internal/api"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/coord"
	"github.com/joonake9644/public-api/internal/keys"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/ratelimit"
	"github.com/joonake9644/public-api/internal/supervisor"
	"github.com/joonake9644/public-api/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Gateway failed to start")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting public-data gateway")

	// Core components, wired in dependency order: registry and engine
	// are leaves, the client composes registry + limiter + cache, the
	// handler composes everything.
	registry, err := keys.NewRegistry(cfg.Keys)
	if err != nil {
		return err
	}
	registry.CheckExpiry()

	limiter := ratelimit.New()
	store := cache.New(cfg.Cache)
	client := upstream.New(cfg.Upstream, registry, limiter, store)
	engine := coord.NewEngine(cfg.Coord)

	handler := api.NewHandler(cfg, registry, limiter, store, client, engine)
	router := api.NewRouter(cfg, handler)

	// Supervision tree: HTTP server in the api layer, periodic
	// housekeeping beside it.
	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.Logging.Level),
	}))
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())

	tree.AddAPIService(&supervisor.HTTPService{
		Server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.Timeout,
			WriteTimeout: cfg.Server.Timeout,
		},
		ShutdownTimeout: cfg.Server.Timeout,
	})
	tree.AddHousekeepingService(&supervisor.TickerService{
		Name:     "bucket-reclaim",
		Interval: cfg.RateLimit.HousekeepInterval,
		Task:     func() { limiter.Housekeep() },
	})
	tree.AddHousekeepingService(&supervisor.TickerService{
		Name:     "key-expiry-check",
		Interval: cfg.Keys.ExpiryCheckInterval,
		Task:     registry.CheckExpiry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("Gateway stopped")
	return nil
}

// slogLevel maps the configured level onto slog for supervisor events.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
