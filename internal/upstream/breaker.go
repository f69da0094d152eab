// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package upstream

import (
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/metrics"
	"github.com/joonake9644/public-api/internal/models"
)

const breakerName = "public-data-portal"

// breaker wraps the attempt loop in a circuit breaker so that a
// persistently failing portal stops burning retries and sockets. The
// breaker uses real time for its interval and timeout windows; tests
// exercise the wrapped client directly.
type breaker struct {
	cb *gobreaker.CircuitBreaker[*models.APIEnvelope]
}

func newBreaker(cfg config.BreakerConfig) *breaker {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*models.APIEnvelope](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("Opening upstream circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Upstream circuit state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &breaker{cb: cb}
}

// execute runs fn under the breaker and normalizes rejections into the
// taxonomy: an open circuit reads as the dependency being unavailable.
func (b *breaker) execute(fn func() (*models.APIEnvelope, error)) (*models.APIEnvelope, error) {
	env, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.BreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return nil, apierror.Wrap(err, apierror.CodeServiceUnavail, "upstream circuit is open")
		}
		metrics.BreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}
	metrics.BreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return env, nil
}

// BreakerState returns the current breaker state name for health reporting.
func (c *Client) BreakerState() string {
	return stateToString(c.breaker.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
