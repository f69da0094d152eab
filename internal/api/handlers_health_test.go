// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
)

func healthStatus(t *testing.T, router http.Handler, target string) (int, string) {
	t.Helper()
	rec := get(router, target)
	env := decodeEnvelope(t, rec)
	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	return rec.Code, data.Status
}

func TestHealthHealthy(t *testing.T) {
	_, router := newTestStack(t, "http://unused.invalid")

	code, status := healthStatus(t, router, "/api/health")
	if code != http.StatusOK || status != "healthy" {
		t.Errorf("got %d/%s, want 200/healthy", code, status)
	}

	rec := get(router, "/api/health")
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestHealthDegradedOnBlockRate(t *testing.T) {
	h, router := newTestStack(t, "http://unused.invalid")

	// Exhaust a bucket, then pile up denials until blocked > 50%.
	for i := 0; i < 100; i++ {
		h.limiter.CheckLimit("noisy", "anonymous")
	}
	for i := 0; i < 150; i++ {
		h.limiter.CheckLimit("noisy", "anonymous")
	}

	code, status := healthStatus(t, router, "/api/health")
	if code != http.StatusOK || status != "degraded" {
		t.Errorf("got %d/%s, want 200/degraded", code, status)
	}
}

func TestHealthDownWithoutActiveKeys(t *testing.T) {
	h, router := newTestStack(t, "http://unused.invalid")
	h.registry.Suspend("primary")

	code, status := healthStatus(t, router, "/api/health")
	if code != http.StatusServiceUnavailable || status != "down" {
		t.Errorf("got %d/%s, want 503/down", code, status)
	}
}

func TestHealthDetailed(t *testing.T) {
	_, router := newTestStack(t, "http://unused.invalid")

	rec := get(router, "/api/health?detailed=true")
	env := decodeEnvelope(t, rec)

	var data struct {
		Components map[string]struct {
			Status string          `json:"status"`
			Detail json.RawMessage `json:"detail"`
		} `json:"components"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"keys", "ratelimit", "cache", "upstream"} {
		comp, ok := data.Components[name]
		if !ok {
			t.Errorf("component %s missing", name)
			continue
		}
		if len(comp.Detail) == 0 {
			t.Errorf("component %s lacks detail in detailed mode", name)
		}
	}
}

func TestHealthProbes(t *testing.T) {
	_, router := newTestStack(t, "http://unused.invalid")

	if rec := get(router, "/api/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live probe status = %d", rec.Code)
	}
	if rec := get(router, "/api/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("ready probe status = %d", rec.Code)
	}
}

func TestHealthReadyWithoutKeys(t *testing.T) {
	h, router := newTestStack(t, "http://unused.invalid")
	h.registry.Suspend("primary")

	if rec := get(router, "/api/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready probe status = %d, want 503", rec.Code)
	}
}

func TestCacheInvalidateEndpoint(t *testing.T) {
	h, router := newTestStack(t, "http://unused.invalid")

	// Seed the coordinate cache through a transform.
	get(router, "/api/coordinate/transform?from=WGS84&to=UTM_K&x=126.978&y=37.5665")
	if h.store.Stats().Size == 0 {
		t.Fatal("expected a cached transform")
	}

	req := get(router, "/api/cache/stats")
	if req.Code != http.StatusOK {
		t.Fatalf("cache stats status = %d", req.Code)
	}

	rec := post(router, "/api/cache/invalidate?type=coordinate")
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d", rec.Code)
	}
	if h.store.Stats().Size != 0 {
		t.Error("coordinate cache not cleared")
	}

	if rec := post(router, "/api/cache/invalidate?type=bogus"); rec.Code != http.StatusBadRequest {
		t.Errorf("bogus type status = %d, want 400", rec.Code)
	}

	if rec := post(router, "/api/cache/invalidate"); rec.Code != http.StatusOK {
		t.Errorf("full invalidation status = %d", rec.Code)
	}
}
