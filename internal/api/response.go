// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package api provides the HTTP handler layer: request parsing, calls
// into the core components, and uniform envelope responses with
// rate-limit and cache-control headers.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/models"
	"github.com/joonake9644/public-api/internal/ratelimit"
)

// responseWriter writes envelope responses and tracks processing time.
type responseWriter struct {
	w          http.ResponseWriter
	r          *http.Request
	start      time.Time
	production bool
}

func newResponse(w http.ResponseWriter, r *http.Request, production bool) *responseWriter {
	return &responseWriter{w: w, r: r, start: time.Now(), production: production}
}

// Success writes a 200 envelope. cached is included in metadata when
// non-nil.
func (rw *responseWriter) Success(data any, cached *bool) {
	env := &models.APIEnvelope{
		Success: true,
		Data:    data,
		Metadata: models.Metadata{
			Timestamp:      time.Now(),
			Cached:         cached,
			ProcessingTime: models.Int64(time.Since(rw.start).Milliseconds()),
		},
	}
	rw.writeJSON(http.StatusOK, env)
}

// Envelope writes an already-built envelope, stamping processing time.
func (rw *responseWriter) Envelope(status int, env *models.APIEnvelope) {
	env.Metadata.ProcessingTime = models.Int64(time.Since(rw.start).Milliseconds())
	rw.writeJSON(status, env)
}

// Error classifies err, applies production masking, and writes the error
// envelope with the taxonomy status.
func (rw *responseWriter) Error(err error) {
	apiErr := apierror.FromError(err).Sanitized(rw.production)

	if apiErr.Status >= http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Request failed")
	}

	env := models.Failure(apiErr)
	env.Metadata.ProcessingTime = models.Int64(time.Since(rw.start).Milliseconds())
	rw.writeJSON(apiErr.Status, env)
}

func (rw *responseWriter) writeJSON(status int, env *models.APIEnvelope) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(env); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode response envelope")
	}
}

// envelopeWithData rewraps an upstream envelope around a reshaped
// payload, keeping the cached flag and success state.
func envelopeWithData(env *models.APIEnvelope, data any) *models.APIEnvelope {
	cp := *env
	cp.Data = data
	return &cp
}

// writeRateLimitHeaders exposes an admission decision on the response.
// Retry-After is present only when admission was denied.
func writeRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", d.Reset))
	if !d.Allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", d.RetryAfter))
	}
}

// writeCachePolicy sets Cache-Control for a cacheable GET of the given
// type.
func writeCachePolicy(w http.ResponseWriter, t cache.Type) {
	maxAge := int(cache.TTLFor(t).Seconds())
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
}

// writeNoCache marks a response as uncacheable.
func writeNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache")
}

// writeNoStore marks a response as never stored (health probes).
func writeNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
}
