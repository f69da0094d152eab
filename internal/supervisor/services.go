// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/joonake9644/public-api/internal/logging"
)

// HTTPService runs an http.Server as a suture service, shutting down
// gracefully when the supervisor cancels its context.
type HTTPService struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Server.ListenAndServe()
	}()

	logging.Info().Str("addr", s.Server.Addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
		<-errCh
		return ctx.Err()
	}
}

// TickerService invokes a task on a fixed interval until cancelled. Used
// for the rate-limiter bucket reclaim and the key-expiry advisory sweep.
type TickerService struct {
	Name     string
	Interval time.Duration
	Task     func()

	// RunAtStart invokes the task once before the first tick.
	RunAtStart bool
}

// Serve implements suture.Service.
func (s *TickerService) Serve(ctx context.Context) error {
	if s.RunAtStart {
		s.Task()
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Task()
		case <-ctx.Done():
			logging.Debug().Str("service", s.Name).Msg("Housekeeping service stopping")
			return ctx.Err()
		}
	}
}
