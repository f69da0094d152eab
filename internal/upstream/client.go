// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package upstream implements the credential-injecting, rate-limit-aware,
// retrying HTTP client for Korean public-data endpoints, together with
// its caching adapter and circuit breaker.
//
// Request pipeline: acquire credential -> admission check -> sanitized
// logging -> send with timeout -> bounded retry -> classification ->
// envelope.
package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/keys"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/metrics"
	"github.com/joonake9644/public-api/internal/models"
	"github.com/joonake9644/public-api/internal/ratelimit"
)

// maxErrorBodySize limits how much of an upstream error body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// acceptHeader advertises the payload formats the portals serve.
const acceptHeader = "application/json, application/xml"

// Stats is the client counter snapshot with derived rates.
type Stats struct {
	TotalRequests       int64   `json:"totalRequests"`
	SuccessfulRequests  int64   `json:"successfulRequests"`
	FailedRequests      int64   `json:"failedRequests"`
	CachedRequests      int64   `json:"cachedRequests"`
	RateLimitedRequests int64   `json:"rateLimitedRequests"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	SuccessRate         float64 `json:"successRate"`
}

// Client dispatches requests to the configured portal base URL.
// Safe for concurrent use.
type Client struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	registry   *keys.Registry
	limiter    *ratelimit.Limiter
	store      *cache.Cache
	breaker    *breaker

	mu                  sync.Mutex
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	cachedRequests      int64
	rateLimitedRequests int64

	logger zerolog.Logger
}

// New creates a client. The limiter and cache may be shared with the
// rest of the process; the client never mutates them outside its own
// operations.
func New(cfg config.UpstreamConfig, registry *keys.Registry, limiter *ratelimit.Limiter, store *cache.Cache) *Client {
	c := &Client{
		cfg:      cfg,
		registry: registry,
		limiter:  limiter,
		store:    store,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.WithComponent("upstream"),
	}
	c.breaker = newBreaker(cfg.Breaker)
	return c
}

// Get dispatches a GET to the given endpoint path with the caller's
// parameters, returning a success envelope or a classified error.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (*models.APIEnvelope, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

// Post dispatches a POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, params map[string]string, body any) (*models.APIEnvelope, error) {
	return c.do(ctx, http.MethodPost, endpoint, params, body)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body any) (*models.APIEnvelope, error) {
	c.countRequest()

	// Step 1: acquire credential.
	secret, err := c.registry.Get(c.cfg.KeyProvider)
	if err != nil {
		c.countFailure()
		return nil, err
	}

	// Step 2: admission. The identifier is the provider tag, a stable
	// non-secret surrogate for the credential.
	if c.cfg.EnableRateLimit {
		decision := c.limiter.CheckLimit(c.cfg.KeyProvider, ratelimit.TierAuthenticated)
		if !decision.Allowed {
			c.countRateLimited()
			return nil, apierror.New(apierror.CodeRateLimitExceeded, "upstream request budget exhausted").
				WithDetails(map[string]any{"retryAfter": decision.RetryAfter})
		}
	}

	// Step 3: sanitized request log.
	reqURL := c.buildURL(endpoint, secret, params)
	c.logger.Debug().
		Str("method", method).
		Str("url", logging.SanitizeURL(reqURL)).
		Interface("params", logging.SanitizeParams(params)).
		Msg("Dispatching upstream request")

	// Steps 4-6 run under the circuit breaker.
	env, err := c.breaker.execute(func() (*models.APIEnvelope, error) {
		return c.send(ctx, method, reqURL, body)
	})
	if err != nil {
		c.countFailure()
		return nil, err
	}

	c.countSuccess()
	return env, nil
}

// buildURL assembles the request URL with the injected serviceKey and
// the caller's parameters.
func (c *Client) buildURL(endpoint, secret string, params map[string]string) string {
	values := url.Values{}
	values.Set("serviceKey", secret)
	for k, v := range params {
		values.Set(k, v)
	}
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + endpoint + "?" + values.Encode()
}

// send performs the attempt loop. Retries happen on network-class
// errors, HTTP 429 and HTTP 5xx; the delay before retry i is
// i * RetryDelay, a monotonically non-decreasing sequence.
func (c *Client) send(ctx context.Context, method, reqURL string, body any) (*models.APIEnvelope, error) {
	var lastErr *apierror.Error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.cfg.RetryDelay
			metrics.UpstreamRetries.Inc()
			c.logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("url", logging.SanitizeURL(reqURL)).
				Msg("Retrying upstream request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, classifyTransport(ctx.Err())
			}
		}

		env, err := c.attempt(ctx, method, reqURL, body)
		if err == nil {
			return env, nil
		}

		lastErr = err
		if !retriable(err) {
			break
		}
	}

	return nil, lastErr
}

// attempt performs one request/decode cycle.
func (c *Client) attempt(ctx context.Context, method, reqURL string, body any) (*models.APIEnvelope, *apierror.Error) {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apierror.Wrap(err, apierror.CodeInternal, "failed to encode request body")
		}
		reqBody = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.CodeInternal, "failed to create request")
	}
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		diag := readBodyForError(resp.Body)
		return nil, classifyStatus(resp.StatusCode, diag)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apierror.Wrap(err, apierror.CodeExternalAPI, "upstream returned a malformed body")
	}

	return models.Success(payload, false), nil
}

// readBodyForError reads at most maxErrorBodySize bytes of a response
// body for diagnostics.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "... (truncated)"
	}
	return string(body)
}

// Stats returns the counter snapshot with derived rates.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalRequests:       c.totalRequests,
		SuccessfulRequests:  c.successfulRequests,
		FailedRequests:      c.failedRequests,
		CachedRequests:      c.cachedRequests,
		RateLimitedRequests: c.rateLimitedRequests,
	}
	if c.totalRequests > 0 {
		s.CacheHitRate = float64(c.cachedRequests) / float64(c.totalRequests) * 100
		s.SuccessRate = float64(c.successfulRequests) / float64(c.totalRequests) * 100
	}
	return s
}

// ResetStats zeroes the counters.
func (c *Client) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests = 0
	c.successfulRequests = 0
	c.failedRequests = 0
	c.cachedRequests = 0
	c.rateLimitedRequests = 0
}

func (c *Client) countRequest() {
	c.mu.Lock()
	c.totalRequests++
	c.mu.Unlock()
}

func (c *Client) countSuccess() {
	c.mu.Lock()
	c.successfulRequests++
	c.mu.Unlock()
	metrics.UpstreamRequests.WithLabelValues("success").Inc()
}

func (c *Client) countFailure() {
	c.mu.Lock()
	c.failedRequests++
	c.mu.Unlock()
	metrics.UpstreamRequests.WithLabelValues("failure").Inc()
}

func (c *Client) countRateLimited() {
	c.mu.Lock()
	c.rateLimitedRequests++
	c.failedRequests++
	c.mu.Unlock()
	metrics.UpstreamRequests.WithLabelValues("rate_limited").Inc()
}

func (c *Client) countCached() {
	c.mu.Lock()
	c.cachedRequests++
	c.successfulRequests++
	c.mu.Unlock()
	metrics.UpstreamRequests.WithLabelValues("cached").Inc()
}
