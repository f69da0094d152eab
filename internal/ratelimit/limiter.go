// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package ratelimit implements per-(tier, identifier) token-bucket
// admission control with continuous refill, a one-hour violation log,
// and idle-bucket housekeeping. A limit check never fails; it always
// returns a decision.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/metrics"
)

// Tier is an admission class with a fixed capacity and window.
type Tier string

const (
	TierAnonymous     Tier = "anonymous"
	TierAuthenticated Tier = "authenticated"
	TierPremium       Tier = "premium"
)

// tierPolicy fixes a tier's per-window budget.
type tierPolicy struct {
	capacity float64
	window   time.Duration
}

var tierPolicies = map[Tier]tierPolicy{
	TierAnonymous:     {capacity: 100, window: time.Hour},
	TierAuthenticated: {capacity: 1000, window: time.Hour},
	TierPremium:       {capacity: 10000, window: time.Hour},
}

// policyFor returns the policy for a tier; unknown tiers get the
// anonymous budget.
func policyFor(tier Tier) tierPolicy {
	if p, ok := tierPolicies[tier]; ok {
		return p
	}
	return tierPolicies[TierAnonymous]
}

// violationRetention bounds how long denied decisions are kept.
const violationRetention = time.Hour

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed    bool  `json:"allowed"`
	Remaining  int64 `json:"remaining"`
	Reset      int64 `json:"reset"`
	Limit      int64 `json:"limit"`
	RetryAfter int64 `json:"retryAfter,omitempty"`
}

// Violation records a denied admission decision.
type Violation struct {
	Identifier string    `json:"identifier"`
	Tier       Tier      `json:"tier"`
	Timestamp  time.Time `json:"timestamp"`
	Limit      int64     `json:"limit"`
}

// Stats is the limiter counter snapshot.
type Stats struct {
	TotalRequests    int64   `json:"totalRequests"`
	Allowed          int64   `json:"allowed"`
	Blocked          int64   `json:"blocked"`
	Violations       int64   `json:"violations"`
	ActiveBuckets    int     `json:"activeBuckets"`
	RecentViolations int     `json:"recentViolations"`
	BlockRate        float64 `json:"blockRate"`
}

// bucket is one refillable token reservoir. Invariant:
// 0 <= tokens <= capacity at all observed times.
type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per millisecond
	lastRefill time.Time
}

// refill tops up the bucket for the elapsed time and stamps lastRefill.
func (b *bucket) refill(now time.Time) {
	elapsedMs := float64(now.Sub(b.lastRefill)) / float64(time.Millisecond)
	if elapsedMs <= 0 {
		return
	}
	b.tokens = math.Min(b.capacity, b.tokens+elapsedMs*b.refillRate)
	b.lastRefill = now
}

// Limiter is the token-bucket admission controller. Safe for concurrent
// use; refill and consume are atomic per bucket.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	violations []Violation

	totalRequests   int64
	allowed         int64
	blocked         int64
	totalViolations int64

	// now is the clock; replaceable in tests.
	now func() time.Time

	logger zerolog.Logger
}

// New creates a limiter with empty state.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		logger:  logging.WithComponent("ratelimit"),
	}
}

// bucketKey builds the canonical "{tier}:{identifier}" key.
func bucketKey(tier Tier, identifier string) string {
	return string(tier) + ":" + identifier
}

// getBucket returns the bucket for (tier, identifier), lazily creating a
// full one. Must be called with mu held.
func (l *Limiter) getBucket(tier Tier, identifier string, now time.Time) *bucket {
	key := bucketKey(tier, identifier)
	b, ok := l.buckets[key]
	if !ok {
		p := policyFor(tier)
		b = &bucket{
			tokens:     p.capacity,
			capacity:   p.capacity,
			refillRate: p.capacity / float64(p.window/time.Millisecond),
			lastRefill: now,
		}
		l.buckets[key] = b
	}
	return b
}

// decision builds the Decision for a bucket's current state. Must be
// called after refill.
func (b *bucket) decision(allowed bool) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     int64(b.capacity),
		Remaining: int64(math.Floor(b.tokens)),
		Reset:     resetInstant(b),
	}
	if !allowed {
		d.Remaining = 0
		d.RetryAfter = int64(math.Ceil(1 / b.refillRate / 1000))
	}
	return d
}

// resetInstant computes the unix second at which the bucket is full again.
func resetInstant(b *bucket) int64 {
	refillMs := (b.capacity - b.tokens) / b.refillRate
	resetMs := float64(b.lastRefill.UnixMilli()) + refillMs
	return int64(math.Ceil(resetMs / 1000))
}

// CheckLimit decides whether one request by identifier in tier may
// proceed, consuming a token when it may.
func (l *Limiter) CheckLimit(identifier string, tier Tier) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.totalRequests++

	b := l.getBucket(tier, identifier, now)
	b.refill(now)

	if b.tokens >= 1 {
		b.tokens--
		l.allowed++
		metrics.RateLimitDecisions.WithLabelValues(string(tier), "allowed").Inc()
		metrics.RateLimitActiveBuckets.Set(float64(len(l.buckets)))
		return b.decision(true)
	}

	l.blocked++
	l.totalViolations++
	l.violations = append(l.violations, Violation{
		Identifier: identifier,
		Tier:       tier,
		Timestamp:  now,
		Limit:      int64(b.capacity),
	})
	l.pruneViolationsLocked(now)

	l.logger.Warn().
		Str("identifier", identifier).
		Str("tier", string(tier)).
		Int64("limit", int64(b.capacity)).
		Msg("Rate limit exceeded")
	metrics.RateLimitDecisions.WithLabelValues(string(tier), "blocked").Inc()
	metrics.RateLimitActiveBuckets.Set(float64(len(l.buckets)))

	return b.decision(false)
}

// GetStatus reports the decision the identifier would receive without
// consuming a token or recording a violation.
func (l *Limiter) GetStatus(identifier string, tier Tier) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.getBucket(tier, identifier, now)
	b.refill(now)

	return b.decision(b.tokens >= 1)
}

// Reset restores the bucket for (tier, identifier) to full.
func (l *Limiter) Reset(identifier string, tier Tier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, bucketKey(tier, identifier))
}

// ResetAll discards every bucket.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}

// Stats returns the counter snapshot.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneViolationsLocked(l.now())

	rate := 0.0
	if l.totalRequests > 0 {
		rate = float64(l.blocked) / float64(l.totalRequests) * 100
	}
	return Stats{
		TotalRequests:    l.totalRequests,
		Allowed:          l.allowed,
		Blocked:          l.blocked,
		Violations:       l.totalViolations,
		ActiveBuckets:    len(l.buckets),
		RecentViolations: len(l.violations),
		BlockRate:        rate,
	}
}

// Violations returns the retained violation records, optionally filtered
// by identifier. Records older than one hour are pruned on access.
func (l *Limiter) Violations(identifier string) []Violation {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneViolationsLocked(l.now())

	out := make([]Violation, 0, len(l.violations))
	for _, v := range l.violations {
		if identifier == "" || v.Identifier == identifier {
			out = append(out, v)
		}
	}
	return out
}

// ResetStats zeroes the counters and drops the violation log. Buckets
// are untouched.
func (l *Limiter) ResetStats() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalRequests = 0
	l.allowed = 0
	l.blocked = 0
	l.totalViolations = 0
	l.violations = nil
}

// Housekeep removes buckets whose last refill is older than twice their
// tier window and returns the number removed. A concurrent CheckLimit
// simply resurrects a reclaimed bucket at full capacity.
func (l *Limiter) Housekeep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		idleLimit := 2 * time.Duration(b.capacity/b.refillRate) * time.Millisecond
		if now.Sub(b.lastRefill) >= idleLimit {
			delete(l.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug().Int("removed", removed).Msg("Reclaimed idle rate limit buckets")
	}
	return removed
}

// pruneViolationsLocked drops violations older than the retention window.
func (l *Limiter) pruneViolationsLocked(now time.Time) {
	cutoff := now.Add(-violationRetention)
	keep := l.violations[:0]
	for _, v := range l.violations {
		if v.Timestamp.After(cutoff) {
			keep = append(keep, v)
		}
	}
	l.violations = keep
}
