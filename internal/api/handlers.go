// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"time"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/coord"
	"github.com/joonake9644/public-api/internal/keys"
	"github.com/joonake9644/public-api/internal/ratelimit"
	"github.com/joonake9644/public-api/internal/upstream"
)

// Handler holds the core components and serves the HTTP surface. All
// collaborators are injected; the handler owns no state beyond its
// start time.
type Handler struct {
	cfg       *config.Config
	registry  *keys.Registry
	limiter   *ratelimit.Limiter
	store     *cache.Cache
	client    *upstream.Client
	engine    *coord.Engine
	startTime time.Time
}

// NewHandler wires the handler to its collaborators.
func NewHandler(
	cfg *config.Config,
	registry *keys.Registry,
	limiter *ratelimit.Limiter,
	store *cache.Cache,
	client *upstream.Client,
	engine *coord.Engine,
) *Handler {
	return &Handler{
		cfg:       cfg,
		registry:  registry,
		limiter:   limiter,
		store:     store,
		client:    client,
		engine:    engine,
		startTime: time.Now(),
	}
}

func (h *Handler) response(w http.ResponseWriter, r *http.Request) *responseWriter {
	return newResponse(w, r, h.cfg.Server.IsProduction())
}

// admit consults the token-bucket limiter for the request's identifier
// at the given tier, writes the rate-limit headers, and returns a
// RATE_LIMIT_EXCEEDED error when denied.
func (h *Handler) admit(w http.ResponseWriter, r *http.Request, tier ratelimit.Tier) error {
	if h.cfg.RateLimit.Disabled {
		return nil
	}

	decision := h.limiter.CheckLimit(clientIdentifier(r), tier)
	writeRateLimitHeaders(w, decision)
	if !decision.Allowed {
		return apierror.New(apierror.CodeRateLimitExceeded, "rate limit exceeded").
			WithDetails(map[string]any{"retryAfter": decision.RetryAfter, "limit": decision.Limit})
	}
	return nil
}
