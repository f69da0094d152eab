// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package config loads and validates gateway configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"time"
)

// Config is the root configuration for the gateway process.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Keys      KeysConfig      `koanf:"keys"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
	Coord     CoordConfig     `koanf:"coordinate"`
	Health    HealthConfig    `koanf:"health"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". In production,
	// internal error details are masked before they reach clients.
	Environment string `koanf:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// KeysConfig holds API-key registry settings. The primary key is
// required; per-service keys override it for their provider.
type KeysConfig struct {
	Primary string `koanf:"primary"`

	// Expiry is an ISO-8601 date for the primary key. Empty means the
	// far-future sentinel.
	Expiry string `koanf:"expiry"`

	// Per-provider overrides, loaded from PUBLIC_DATA_<SERVICE>_API_KEY.
	Address    string `koanf:"address"`
	Business   string `koanf:"business"`
	Apartment  string `koanf:"apartment"`
	Realestate string `koanf:"realestate"`
	Building   string `koanf:"building"`
	Subway     string `koanf:"subway"`

	// ExpiryCheckInterval is how often the advisory expiry sweep runs.
	ExpiryCheckInterval time.Duration `koanf:"expiry_check_interval"`
}

// ServiceKeys returns the configured per-provider overrides, keyed by
// provider tag. Empty entries are omitted.
func (k KeysConfig) ServiceKeys() map[string]string {
	all := map[string]string{
		"address":    k.Address,
		"business":   k.Business,
		"apartment":  k.Apartment,
		"realestate": k.Realestate,
		"building":   k.Building,
		"subway":     k.Subway,
	}
	keys := make(map[string]string)
	for provider, secret := range all {
		if secret != "" {
			keys[provider] = secret
		}
	}
	return keys
}

// UpstreamConfig holds the upstream HTTP client settings.
type UpstreamConfig struct {
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxRetries      int           `koanf:"max_retries"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	EnableCache     bool          `koanf:"enable_cache"`
	EnableRateLimit bool          `koanf:"enable_rate_limit"`
	KeyProvider     string        `koanf:"key_provider"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker thresholds for the upstream client.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

// RateLimitConfig holds admission control settings. Tier capacities and
// windows are fixed policy (see the ratelimit package); this configures
// the surrounding machinery.
type RateLimitConfig struct {
	Disabled          bool          `koanf:"disabled"`
	HousekeepInterval time.Duration `koanf:"housekeep_interval"`

	// Coarse per-IP guard applied in middleware, in front of the
	// token-bucket limiter.
	IPRequests int           `koanf:"ip_requests"`
	IPWindow   time.Duration `koanf:"ip_window"`
}

// CacheConfig holds response cache bounds.
type CacheConfig struct {
	MaxEntries int   `koanf:"max_entries"`
	MaxBytes   int64 `koanf:"max_bytes"`
}

// CoordConfig holds coordinate engine settings.
type CoordConfig struct {
	// StrictKoreaBounds enables warnings for coordinates outside the
	// expected Korean range. Set STRICT_KOREA_BOUNDS=false to disable.
	StrictKoreaBounds bool `koanf:"strict_korea_bounds"`
}

// HealthConfig holds the degraded-threshold policy numbers.
type HealthConfig struct {
	CacheMemoryPct float64 `koanf:"cache_memory_pct"`
	BlockRatePct   float64 `koanf:"block_rate_pct"`
	SuccessRatePct float64 `koanf:"success_rate_pct"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Keys: KeysConfig{
			Primary:             "",
			Expiry:              "",
			ExpiryCheckInterval: 6 * time.Hour,
		},
		Upstream: UpstreamConfig{
			BaseURL:         "https://apis.data.go.kr",
			Timeout:         30 * time.Second,
			MaxRetries:      3,
			RetryDelay:      1 * time.Second,
			EnableCache:     true,
			EnableRateLimit: true,
			KeyProvider:     "primary",
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				FailureRatio: 0.6,
				MinRequests:  10,
			},
		},
		RateLimit: RateLimitConfig{
			Disabled:          false,
			HousekeepInterval: time.Hour,
			IPRequests:        600,
			IPWindow:          time.Minute,
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
			MaxBytes:   50 << 20,
		},
		Coord: CoordConfig{
			StrictKoreaBounds: true,
		},
		Health: HealthConfig{
			CacheMemoryPct: 90,
			BlockRatePct:   50,
			SuccessRatePct: 70,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
