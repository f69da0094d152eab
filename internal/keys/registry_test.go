// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package keys

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/config"
)

const validKey = "abcdefghij1234567890PLUS+slash/equal="

func validConfig() config.KeysConfig {
	return config.KeysConfig{Primary: validKey}
}

func TestNewRegistryRequiresPrimary(t *testing.T) {
	_, err := NewRegistry(config.KeysConfig{})
	if err == nil {
		t.Fatal("expected error for missing primary key")
	}
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierror.CodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestNewRegistryRejectsMalformedPrimary(t *testing.T) {
	tests := []string{
		"short",
		"has spaces in the middle of it all",
		"bad!chars#here$$$$$$$$$$",
	}
	for _, secret := range tests {
		if _, err := NewRegistry(config.KeysConfig{Primary: secret}); err == nil {
			t.Errorf("expected error for malformed key %q", secret)
		}
	}
}

func TestGetPrimaryByDefault(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	secret, err := reg.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if secret != validKey {
		t.Errorf("got %q, want primary secret", secret)
	}
}

func TestGetUnknownProviderFallsBackToPrimary(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	secret, err := reg.Get("no-such-provider")
	if err != nil {
		t.Fatal(err)
	}
	if secret != validKey {
		t.Errorf("got %q, want primary secret", secret)
	}
}

func TestGetServiceProvider(t *testing.T) {
	addressKey := "addressSERVICEkey1234567890=="
	cfg := validConfig()
	cfg.Address = addressKey

	reg, err := NewRegistry(cfg)
	if err != nil {
		t.Fatal(err)
	}

	secret, err := reg.Get("address")
	if err != nil {
		t.Fatal(err)
	}
	if secret != addressKey {
		t.Errorf("got %q, want address service key", secret)
	}
}

func TestGetExpiredKey(t *testing.T) {
	cfg := validConfig()
	cfg.Expiry = "2020-01-01"

	reg, err := NewRegistry(cfg)
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.Get("primary")
	if err == nil {
		t.Fatal("expected error for expired key")
	}
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierror.CodeAPIKey {
		t.Errorf("expected API_KEY_ERROR, got %v", err)
	}

	// The transition to expired is monotonic and observable.
	if info := reg.KeyInfo("primary"); info == nil || info.Status != StatusExpired {
		t.Errorf("expected expired status after failed Get, got %+v", info)
	}
}

func TestGetSuspendedKey(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	if !reg.Suspend("primary") {
		t.Fatal("suspend should succeed on an active key")
	}
	if reg.Suspend("primary") {
		t.Error("suspend should be a no-op on a non-active key")
	}

	if _, err := reg.Get("primary"); err == nil {
		t.Error("expected error for suspended key")
	}
}

func TestGetUpdatesLastUsed(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	before := reg.KeyInfo("primary").LastUsedAt
	if !before.IsZero() {
		t.Fatal("last-used should start zero")
	}

	if _, err := reg.Get("primary"); err != nil {
		t.Fatal(err)
	}
	if reg.KeyInfo("primary").LastUsedAt.IsZero() {
		t.Error("last-used not updated by Get")
	}
}

func TestStats(t *testing.T) {
	soonKey := "soonEXPIRINGkey1234567890aa"
	cfg := validConfig()
	cfg.Subway = soonKey
	// Both records share the configured expiry. Choose one ~15 days out
	// so the expiring-soon band triggers.
	cfg.Expiry = time.Now().Add(15 * 24 * time.Hour).UTC().Format(time.RFC3339)

	reg, err := NewRegistry(cfg)
	if err != nil {
		t.Fatal(err)
	}

	stats := reg.Stats()
	if stats.TotalKeys != 2 {
		t.Errorf("totalKeys = %d, want 2", stats.TotalKeys)
	}
	if stats.ActiveKeys != 2 {
		t.Errorf("activeKeys = %d, want 2", stats.ActiveKeys)
	}
	if stats.ExpiringSoon != 2 {
		t.Errorf("expiringSoon = %d, want 2", stats.ExpiringSoon)
	}
	if stats.ExpiredKeys != 0 {
		t.Errorf("expiredKeys = %d, want 0", stats.ExpiredKeys)
	}
}

func TestKeyInfoReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	info := reg.KeyInfo("primary")
	info.Status = StatusSuspended

	if reg.KeyInfo("primary").Status != StatusActive {
		t.Error("KeyInfo must return a copy, not the live record")
	}
}

func TestMaskKeyKeepsPrefixOnly(t *testing.T) {
	reg, err := NewRegistry(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	masked := reg.MaskKey(validKey)
	if !strings.HasPrefix(masked, validKey[:4]) {
		t.Errorf("masked key should keep first 4 chars: %q", masked)
	}
	if strings.Contains(masked, validKey[4:8]) {
		t.Errorf("masked key leaks material: %q", masked)
	}
}
