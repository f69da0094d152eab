// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/joonake9644/public-api/internal/apierror"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/public-api/config.yaml",
	"/etc/public-api/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML (if present)
//  3. Environment variables: override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apierror.Wrap(err, apierror.CodeConfiguration, "configuration validation failed")
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps recognized environment variable names to koanf
// config paths. Unmapped variables are skipped so that unrelated
// environment entries cannot pollute the configuration.
//
// Examples:
//   - PUBLIC_DATA_API_KEY -> keys.primary
//   - PUBLIC_DATA_ADDRESS_API_KEY -> keys.address
//   - LOG_LEVEL -> logging.level
//   - NODE_ENV -> server.environment
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Credential mappings
		"public_data_api_key":            "keys.primary",
		"api_key_expiry":                 "keys.expiry",
		"public_data_address_api_key":    "keys.address",
		"public_data_business_api_key":   "keys.business",
		"public_data_apartment_api_key":  "keys.apartment",
		"public_data_realestate_api_key": "keys.realestate",
		"public_data_building_api_key":   "keys.building",
		"public_data_subway_api_key":     "keys.subway",
		"key_expiry_check_interval":      "keys.expiry_check_interval",

		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"node_env":     "server.environment",
		"environment":  "server.environment",

		// Upstream client mappings
		"upstream_base_url":          "upstream.base_url",
		"upstream_timeout":           "upstream.timeout",
		"upstream_max_retries":       "upstream.max_retries",
		"upstream_retry_delay":       "upstream.retry_delay",
		"upstream_enable_cache":      "upstream.enable_cache",
		"upstream_enable_rate_limit": "upstream.enable_rate_limit",
		"upstream_key_provider":      "upstream.key_provider",
		"breaker_max_requests":       "upstream.breaker.max_requests",
		"breaker_interval":           "upstream.breaker.interval",
		"breaker_timeout":            "upstream.breaker.timeout",
		"breaker_failure_ratio":      "upstream.breaker.failure_ratio",
		"breaker_min_requests":       "upstream.breaker.min_requests",

		// Rate limit mappings
		"disable_rate_limit":     "rate_limit.disabled",
		"rate_limit_housekeep":   "rate_limit.housekeep_interval",
		"rate_limit_ip_requests": "rate_limit.ip_requests",
		"rate_limit_ip_window":   "rate_limit.ip_window",

		// Cache mappings
		"cache_max_entries": "cache.max_entries",
		"cache_max_bytes":   "cache.max_bytes",

		// Coordinate mappings
		"strict_korea_bounds": "coordinate.strict_korea_bounds",

		// Health threshold mappings
		"health_cache_memory_pct": "health.cache_memory_pct",
		"health_block_rate_pct":   "health.block_rate_pct",
		"health_success_rate_pct": "health.success_rate_pct",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
