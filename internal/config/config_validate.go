// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package config

import (
	"fmt"
	"time"
)

// Validate checks startup invariants. A violation here is fatal: the
// process must not start with a configuration it cannot honor.
//
// Credential format and presence are validated by the key registry at
// construction; this covers everything else.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Keys.Expiry != "" {
		if _, err := parseExpiry(c.Keys.Expiry); err != nil {
			return fmt.Errorf("keys.expiry: %w", err)
		}
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url must not be empty")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries must not be negative, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.RetryDelay < 0 {
		return fmt.Errorf("upstream.retry_delay must not be negative, got %s", c.Upstream.RetryDelay)
	}
	if c.Upstream.Breaker.FailureRatio <= 0 || c.Upstream.Breaker.FailureRatio > 1 {
		return fmt.Errorf("upstream.breaker.failure_ratio must be in (0, 1], got %g", c.Upstream.Breaker.FailureRatio)
	}

	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.MaxBytes <= 0 {
		return fmt.Errorf("cache.max_bytes must be positive, got %d", c.Cache.MaxBytes)
	}

	if c.RateLimit.HousekeepInterval <= 0 {
		return fmt.Errorf("rate_limit.housekeep_interval must be positive, got %s", c.RateLimit.HousekeepInterval)
	}

	for name, pct := range map[string]float64{
		"health.cache_memory_pct": c.Health.CacheMemoryPct,
		"health.block_rate_pct":   c.Health.BlockRatePct,
		"health.success_rate_pct": c.Health.SuccessRatePct,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%s must be in [0, 100], got %g", name, pct)
		}
	}

	return nil
}

// expiryFormats lists the accepted layouts for key expiry instants.
var expiryFormats = []string{
	time.RFC3339,
	"2006-01-02",
}

// parseExpiry parses an ISO-8601 expiry value. Date-only values expire at
// midnight UTC of that day.
func parseExpiry(value string) (time.Time, error) {
	for _, layout := range expiryFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid expiry %q: want RFC3339 or YYYY-MM-DD", value)
}

// ParseExpiry exposes expiry parsing to the key registry.
func ParseExpiry(value string) (time.Time, error) {
	return parseExpiry(value)
}
