// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/ratelimit"
)

// cacheTypes enumerates the valid invalidation targets.
var cacheTypes = map[string]cache.Type{
	"address":    cache.TypeAddress,
	"building":   cache.TypeBuilding,
	"coordinate": cache.TypeCoordinate,
	"realtime":   cache.TypeRealtime,
	"static":     cache.TypeStatic,
}

// CacheInvalidate handles POST /api/cache/invalidate. With a type query
// parameter one bucket is cleared; without it the whole cache.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoCache(w)

	if err := h.admit(w, r, ratelimit.TierAuthenticated); err != nil {
		rw.Error(err)
		return
	}

	raw := r.URL.Query().Get("type")
	if raw == "" {
		h.client.InvalidateAllCache()
		rw.Success(map[string]any{"invalidated": "all"}, nil)
		return
	}

	t, ok := cacheTypes[raw]
	if !ok {
		rw.Error(apierror.Newf(apierror.CodeValidation, "unknown cache type %q", raw))
		return
	}
	removed := h.client.InvalidateCache(t)
	rw.Success(map[string]any{"invalidated": raw, "removed": removed}, nil)
}

// CacheStats handles GET /api/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoCache(w)

	if err := h.admit(w, r, ratelimit.TierAuthenticated); err != nil {
		rw.Error(err)
		return
	}

	rw.Success(map[string]any{
		"stats":  h.store.DetailedStats(),
		"memory": h.store.MemoryUsage(),
	}, nil)
}

// RateLimitStatus handles GET /api/ratelimit/status: the caller's
// current budget without consuming a token.
func (h *Handler) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoCache(w)

	tier := ratelimit.Tier(r.URL.Query().Get("tier"))
	if tier == "" {
		tier = ratelimit.TierAnonymous
	}

	decision := h.limiter.GetStatus(clientIdentifier(r), tier)
	writeRateLimitHeaders(w, decision)
	rw.Success(decision, nil)
}
