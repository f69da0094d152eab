// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "staging"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestValidateRejectsBadExpiry(t *testing.T) {
	cfg := defaultConfig()
	cfg.Keys.Expiry = "next tuesday"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unparseable expiry")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Health.BlockRatePct = 150
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold above 100")
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2026-12-31", time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"2026-12-31T09:30:00Z", time.Date(2026, 12, 31, 9, 30, 0, 0, time.UTC), false},
		{"31/12/2026", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := ParseExpiry(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseExpiry(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseExpiry(%q): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseExpiry(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"PUBLIC_DATA_API_KEY", "keys.primary"},
		{"API_KEY_EXPIRY", "keys.expiry"},
		{"PUBLIC_DATA_ADDRESS_API_KEY", "keys.address"},
		{"PUBLIC_DATA_SUBWAY_API_KEY", "keys.subway"},
		{"LOG_LEVEL", "logging.level"},
		{"NODE_ENV", "server.environment"},
		{"STRICT_KOREA_BOUNDS", "coordinate.strict_korea_bounds"},
		{"HTTP_PORT", "server.port"},
		{"PATH", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestServiceKeysOmitsEmpty(t *testing.T) {
	k := KeysConfig{Address: "addrkey", Subway: ""}
	got := k.ServiceKeys()
	if got["address"] != "addrkey" {
		t.Errorf("address key missing: %v", got)
	}
	if _, ok := got["subway"]; ok {
		t.Error("empty subway key should be omitted")
	}
	if len(got) != 1 {
		t.Errorf("expected 1 key, got %d", len(got))
	}
}
