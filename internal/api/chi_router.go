// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/middleware"
)

// NewRouter assembles the chi router: recovery, real-IP resolution,
// request IDs, CORS, a coarse per-IP guard in front of the token-bucket
// limiter, per-route Prometheus instrumentation, and the API surface.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 86400,
	}))

	if !cfg.RateLimit.Disabled && cfg.RateLimit.IPRequests > 0 {
		r.Use(httprate.LimitByRealIP(cfg.RateLimit.IPRequests, cfg.RateLimit.IPWindow))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/coordinate", func(r chi.Router) {
			r.With(middleware.Prometheus("/api/coordinate/transform")).
				Get("/transform", h.TransformGet)
			r.With(middleware.Prometheus("/api/coordinate/transform")).
				Post("/transform", h.TransformPost)
			r.With(middleware.Prometheus("/api/coordinate/systems")).
				Get("/systems", h.Systems)
		})

		r.With(middleware.Prometheus("/api/address")).
			Get("/address", h.Address)

		r.Route("/cache", func(r chi.Router) {
			r.With(middleware.Prometheus("/api/cache/invalidate")).
				Post("/invalidate", h.CacheInvalidate)
			r.With(middleware.Prometheus("/api/cache/stats")).
				Get("/stats", h.CacheStats)
		})

		r.With(middleware.Prometheus("/api/ratelimit/status")).
			Get("/ratelimit/status", h.RateLimitStatus)

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
