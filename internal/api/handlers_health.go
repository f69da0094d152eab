// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"time"

	"github.com/joonake9644/public-api/internal/models"
)

// Component status values.
const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDown     = "down"
)

// componentHealth reports one component's status with optional detail.
type componentHealth struct {
	Status string `json:"status"`
	Detail any    `json:"detail,omitempty"`
}

// healthData is the aggregate health payload.
type healthData struct {
	Status     string                     `json:"status"`
	Uptime     float64                    `json:"uptime"`
	Components map[string]componentHealth `json:"components"`
}

// Health handles GET /api/health. Overall status is down if any
// component reports down, else degraded if any reports degraded, else
// healthy. Down responds 503, everything else 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoStore(w)

	detailed := r.URL.Query().Get("detailed") == "true"

	components := map[string]componentHealth{
		"keys":      h.keysHealth(detailed),
		"ratelimit": h.limiterHealth(detailed),
		"cache":     h.cacheHealth(detailed),
		"upstream":  h.upstreamHealth(detailed),
	}

	overall := statusHealthy
	for _, c := range components {
		if c.Status == statusDown {
			overall = statusDown
			break
		}
		if c.Status == statusDegraded {
			overall = statusDegraded
		}
	}

	status := http.StatusOK
	if overall == statusDown {
		status = http.StatusServiceUnavailable
	}

	data := healthData{
		Status:     overall,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: components,
	}
	// A down gateway is reported as data, not as a taxonomy error, so
	// the envelope stays well-formed: data present, success true.
	rw.Envelope(status, &models.APIEnvelope{
		Success:  true,
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// keysHealth: down with zero active keys, degraded when any key expires
// within 30 days.
func (h *Handler) keysHealth(detailed bool) componentHealth {
	stats := h.registry.Stats()
	c := componentHealth{Status: statusHealthy}
	switch {
	case stats.ActiveKeys == 0:
		c.Status = statusDown
	case stats.ExpiringSoon > 0:
		c.Status = statusDegraded
	}
	if detailed {
		c.Detail = stats
	}
	return c
}

// limiterHealth: degraded when the block rate crosses the configured
// threshold.
func (h *Handler) limiterHealth(detailed bool) componentHealth {
	stats := h.limiter.Stats()
	c := componentHealth{Status: statusHealthy}
	if stats.BlockRate > h.cfg.Health.BlockRatePct {
		c.Status = statusDegraded
	}
	if detailed {
		c.Detail = stats
	}
	return c
}

// cacheHealth: degraded when memory usage crosses the configured
// percentage.
func (h *Handler) cacheHealth(detailed bool) componentHealth {
	usage := h.store.MemoryUsage()
	c := componentHealth{Status: statusHealthy}
	if usage.Percentage > h.cfg.Health.CacheMemoryPct {
		c.Status = statusDegraded
	}
	if detailed {
		c.Detail = map[string]any{
			"memory": usage,
			"stats":  h.store.Stats(),
		}
	}
	return c
}

// upstreamHealth: degraded when the success rate falls under the
// threshold with traffic present, or when the circuit is open.
func (h *Handler) upstreamHealth(detailed bool) componentHealth {
	stats := h.client.Stats()
	c := componentHealth{Status: statusHealthy}
	if stats.TotalRequests > 0 && stats.SuccessRate < h.cfg.Health.SuccessRatePct {
		c.Status = statusDegraded
	}
	if h.client.BreakerState() == "open" {
		c.Status = statusDegraded
	}
	if detailed {
		c.Detail = map[string]any{
			"stats":   stats,
			"breaker": h.client.BreakerState(),
		}
	}
	return c
}

// HealthLive handles GET /api/health/live: 200 whenever the process is
// up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoStore(w)
	rw.Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, nil)
}

// HealthReady handles GET /api/health/ready: 200 only when the gateway
// can serve traffic (an active key exists).
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoStore(w)

	ready := h.registry.Stats().ActiveKeys > 0
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	rw.Envelope(status, &models.APIEnvelope{
		Success: true,
		Data: map[string]any{
			"ready":  ready,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
