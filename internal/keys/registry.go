// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package keys holds and dispenses the credentials used to call upstream
// Korean public-data endpoints. The registry is read-mostly after
// construction; only last-used instants and status transitions mutate.
package keys

import (
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/logging"
)

// PrimaryProvider is the default provider tag.
const PrimaryProvider = "primary"

// keyFormat is the required shape of a public-data service key.
var keyFormat = regexp.MustCompile(`^[A-Za-z0-9%+/=]{20,}$`)

// farFutureExpiry is the sentinel used when no expiry is configured.
var farFutureExpiry = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// Status is the lifecycle state of a key record. Transitions are
// monotonic: active -> expired or active -> suspended, never back.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
)

// Record is a single credential with its lifecycle metadata.
type Record struct {
	Secret     string
	Provider   string
	ExpiresAt  time.Time
	Status     Status
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// DaysUntilExpiry returns whole days until the record expires, negative
// when already past.
func (r *Record) DaysUntilExpiry(now time.Time) int {
	return int(r.ExpiresAt.Sub(now).Hours() / 24)
}

// Stats summarizes the registry for health checks and operators.
type Stats struct {
	TotalKeys    int `json:"totalKeys"`
	ActiveKeys   int `json:"activeKeys"`
	ExpiredKeys  int `json:"expiredKeys"`
	ExpiringSoon int `json:"expiringSoon"`
}

// Registry holds the process credentials, keyed by provider tag.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
	logger  zerolog.Logger
}

// NewRegistry builds the registry from configuration. The primary secret
// is required and must match the service-key format; per-service secrets
// are optional. A missing or malformed primary is a fatal
// CONFIGURATION_ERROR.
func NewRegistry(cfg config.KeysConfig) (*Registry, error) {
	if cfg.Primary == "" {
		return nil, apierror.New(apierror.CodeConfiguration,
			"PUBLIC_DATA_API_KEY is required")
	}
	if !keyFormat.MatchString(cfg.Primary) {
		return nil, apierror.New(apierror.CodeConfiguration,
			"PUBLIC_DATA_API_KEY does not match the service key format")
	}

	expiry := farFutureExpiry
	if cfg.Expiry != "" {
		parsed, err := config.ParseExpiry(cfg.Expiry)
		if err != nil {
			return nil, apierror.Wrap(err, apierror.CodeConfiguration,
				"API_KEY_EXPIRY is not a valid date")
		}
		expiry = parsed
	}

	now := time.Now()
	records := map[string]*Record{
		PrimaryProvider: {
			Secret:    cfg.Primary,
			Provider:  PrimaryProvider,
			ExpiresAt: expiry,
			Status:    StatusActive,
			CreatedAt: now,
		},
	}

	logger := logging.WithComponent("keys")
	for provider, secret := range cfg.ServiceKeys() {
		if !keyFormat.MatchString(secret) {
			logger.Warn().
				Str("provider", provider).
				Msg("Skipping service key with invalid format")
			continue
		}
		records[provider] = &Record{
			Secret:    secret,
			Provider:  provider,
			ExpiresAt: expiry,
			Status:    StatusActive,
			CreatedAt: now,
		}
	}

	logger.Info().
		Int("keys", len(records)).
		Str("primary", logging.MaskKey(cfg.Primary)).
		Time("expiry", expiry).
		Msg("API key registry loaded")

	return &Registry{records: records, logger: logger}, nil
}

// Get returns the secret for a provider, falling back to the primary
// secret when the provider is unknown. It updates the record's last-used
// instant. Fails with API_KEY_ERROR when the selected record is not
// active or its expiry is in the past.
func (r *Registry) Get(provider string) (string, error) {
	if provider == "" {
		provider = PrimaryProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[provider]
	if !ok {
		rec, ok = r.records[PrimaryProvider]
		if !ok {
			return "", apierror.New(apierror.CodeAPIKey, "no primary API key configured")
		}
	}

	now := time.Now()
	if now.After(rec.ExpiresAt) {
		if rec.Status == StatusActive {
			rec.Status = StatusExpired
		}
		return "", apierror.Newf(apierror.CodeAPIKey,
			"API key for provider %q expired on %s", rec.Provider, rec.ExpiresAt.Format(time.RFC3339))
	}
	if rec.Status != StatusActive {
		return "", apierror.Newf(apierror.CodeAPIKey,
			"API key for provider %q is %s", rec.Provider, rec.Status)
	}

	rec.LastUsedAt = now
	return rec.Secret, nil
}

// KeyInfo returns a copy of the record for inspection, or nil when the
// provider is unknown.
func (r *Registry) KeyInfo(provider string) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[provider]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// Suspend marks a provider's key suspended. The transition is monotonic;
// suspending an expired key leaves it expired.
func (r *Registry) Suspend(provider string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[provider]
	if !ok || rec.Status != StatusActive {
		return false
	}
	rec.Status = StatusSuspended
	r.logger.Warn().Str("provider", provider).Msg("API key suspended")
	return true
}

// Stats returns registry counts. ExpiringSoon counts records with
// 0 < days-until-expiry <= 30.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	s := Stats{TotalKeys: len(r.records)}
	for _, rec := range r.records {
		switch {
		case now.After(rec.ExpiresAt) || rec.Status == StatusExpired:
			s.ExpiredKeys++
		case rec.Status == StatusActive:
			s.ActiveKeys++
			if days := rec.DaysUntilExpiry(now); days > 0 && days <= 30 {
				s.ExpiringSoon++
			}
		}
	}
	return s
}

// CheckExpiry emits advisory log records for keys in three severity
// bands: expired (past), urgent (<= 7 days) and warning (<= 30 days).
// It does not mutate any record.
func (r *Registry) CheckExpiry() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	for provider, rec := range r.records {
		days := rec.DaysUntilExpiry(now)
		switch {
		case now.After(rec.ExpiresAt):
			r.logger.Error().
				Str("provider", provider).
				Str("key", logging.MaskKey(rec.Secret)).
				Time("expired_at", rec.ExpiresAt).
				Msg("EXPIRED: API key is past its expiry")
		case days <= 7:
			r.logger.Warn().
				Str("provider", provider).
				Str("key", logging.MaskKey(rec.Secret)).
				Int("days_left", days).
				Msg("URGENT: API key expires within 7 days")
		case days <= 30:
			r.logger.Warn().
				Str("provider", provider).
				Str("key", logging.MaskKey(rec.Secret)).
				Int("days_left", days).
				Msg("WARNING: API key expires within 30 days")
		}
	}
}

// MaskKey masks a secret for log output.
func (r *Registry) MaskKey(secret string) string {
	return logging.MaskKey(secret)
}
