// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package cache provides the bounded in-memory response cache. Entries
// are keyed by (type, key), carry a per-type TTL, and are evicted in
// strict least-recently-used order when either the entry count or the
// cumulative byte size bound is reached.
//
// The implementation uses a doubly-linked list with sentinel nodes for
// O(1) recency bookkeeping and a map for O(1) lookup.
package cache

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/config"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/metrics"
)

// Type is a cache artifact type. The set is closed; each type carries
// its own TTL policy.
type Type string

const (
	TypeAddress    Type = "address"
	TypeBuilding   Type = "building"
	TypeCoordinate Type = "coordinate"
	TypeRealtime   Type = "realtime"
	TypeStatic     Type = "static"
)

// ttlPolicy maps each type to its expiry budget.
var ttlPolicy = map[Type]time.Duration{
	TypeAddress:    24 * time.Hour,
	TypeBuilding:   24 * time.Hour,
	TypeCoordinate: 7 * 24 * time.Hour,
	TypeRealtime:   5 * time.Minute,
	TypeStatic:     30 * 24 * time.Hour,
}

// TTLFor returns the policy TTL for a type, or zero for unknown types.
func TTLFor(t Type) time.Duration {
	return ttlPolicy[t]
}

// entry is a cached artifact. prev/next link the recency list:
// head.next is most recently used, tail.prev least recently used.
type entry struct {
	fullKey   string
	value     any
	createdAt time.Time
	expiresAt time.Time
	hits      int64
	size      int64
	prev      *entry
	next      *entry
}

// GetResult reports a cache lookup outcome.
type GetResult struct {
	Hit   bool
	Value any
	Age   time.Duration
}

// MemoryUsage reports the byte accounting of the cache.
type MemoryUsage struct {
	Current    int64   `json:"current"`
	Max        int64   `json:"max"`
	Percentage float64 `json:"percentage"`
}

// Stats is the basic counter snapshot.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	MaxSize int     `json:"maxSize"`
	HitRate float64 `json:"hitRate"`
}

// DetailedStats extends Stats with mutation counters and byte accounting.
type DetailedStats struct {
	Stats
	Sets              int64 `json:"sets"`
	Deletes           int64 `json:"deletes"`
	Evictions         int64 `json:"evictions"`
	CalculatedSize    int64 `json:"calculatedSize"`
	MaxCalculatedSize int64 `json:"maxCalculatedSize"`
}

// Cache is the bounded LRU response cache. Safe for concurrent use; every
// operation appears atomic to other operations, and the count/size bounds
// hold after every operation commits.
type Cache struct {
	mu sync.Mutex

	maxEntries int
	maxBytes   int64

	items map[string]*entry
	head  *entry
	tail  *entry

	totalBytes int64

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64

	logger zerolog.Logger
}

// New creates a cache with the configured bounds.
func New(cfg config.CacheConfig) *Cache {
	c := &Cache{
		maxEntries: cfg.MaxEntries,
		maxBytes:   cfg.MaxBytes,
		items:      make(map[string]*entry, cfg.MaxEntries),
		head:       &entry{},
		tail:       &entry{},
		logger:     logging.WithComponent("cache"),
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// fullKey builds the canonical "{type}:{key}" cache key.
func fullKey(t Type, key string) string {
	return string(t) + ":" + key
}

// Set inserts a value under (type, key) with the type's policy TTL.
func (c *Cache) Set(t Type, key string, value any) error {
	return c.set(t, key, value, TTLFor(t))
}

// SetWithTTL inserts a value with an explicit TTL override.
func (c *Cache) SetWithTTL(t Type, key string, value any, ttl time.Duration) error {
	return c.set(t, key, value, ttl)
}

func (c *Cache) set(t Type, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return apierror.Newf(apierror.CodeCache, "unknown cache type %q", t)
	}

	serialized, err := json.Marshal(value)
	if err != nil {
		return apierror.Wrap(err, apierror.CodeCache, "failed to compute entry size")
	}
	size := int64(len(serialized))
	if size > c.maxBytes {
		return apierror.Newf(apierror.CodeCache,
			"entry of %d bytes exceeds the cache size bound", size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	fk := fullKey(t, key)

	if old, exists := c.items[fk]; exists {
		c.removeEntry(old)
	}

	e := &entry{
		fullKey:   fk,
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
		size:      size,
	}
	c.addToFront(e)
	c.items[fk] = e
	c.totalBytes += size
	c.sets++

	// Enforce both bounds; the new entry is most recent and never the
	// eviction victim here because size <= maxBytes was checked above.
	for len(c.items) > c.maxEntries || c.totalBytes > c.maxBytes {
		if !c.evictOldest() {
			break
		}
	}

	metrics.CacheEntries.Set(float64(len(c.items)))
	metrics.CacheBytes.Set(float64(c.totalBytes))
	return nil
}

// Get looks up (type, key). A hit increments the entry's hit counter and
// refreshes recency. Entries past expiry are removed and reported as
// misses.
func (c *Cache) Get(t Type, key string) GetResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[fullKey(t, key)]
	if !exists {
		c.misses++
		metrics.CacheMisses.Inc()
		return GetResult{}
	}

	now := time.Now()
	if now.After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		metrics.CacheMisses.Inc()
		return GetResult{}
	}

	e.hits++
	c.moveToFront(e)
	c.hits++
	metrics.CacheHits.Inc()
	return GetResult{Hit: true, Value: e.value, Age: now.Sub(e.createdAt)}
}

// Has reports whether (type, key) is present and unexpired, without
// touching recency or counters.
func (c *Cache) Has(t Type, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[fullKey(t, key)]
	return exists && !time.Now().After(e.expiresAt)
}

// RemainingTTL returns the time until (type, key) expires, or zero when
// absent or already expired.
func (c *Cache) RemainingTTL(t Type, key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[fullKey(t, key)]
	if !exists {
		return 0
	}
	remaining := time.Until(e.expiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Delete removes (type, key). Returns true when an entry was removed.
func (c *Cache) Delete(t Type, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[fullKey(t, key)]
	if !exists {
		return false
	}
	c.removeEntry(e)
	c.deletes++
	return true
}

// DeleteByType removes every entry of the given type and returns the count.
func (c *Cache) DeleteByType(t Type) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := string(t) + ":"
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if len(e.fullKey) >= len(prefix) && e.fullKey[:len(prefix)] == prefix {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	c.deletes += int64(removed)
	return removed
}

// Clear removes all entries. Counters are kept; use ResetStats to zero them.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.maxEntries)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.totalBytes = 0
}

// MemoryUsage returns the current byte accounting.
func (c *Cache) MemoryUsage() MemoryUsage {
	c.mu.Lock()
	defer c.mu.Unlock()

	pct := 0.0
	if c.maxBytes > 0 {
		pct = float64(c.totalBytes) / float64(c.maxBytes) * 100
	}
	return MemoryUsage{Current: c.totalBytes, Max: c.maxBytes, Percentage: pct}
}

// Stats returns the basic counter snapshot.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Cache) statsLocked() Stats {
	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    len(c.items),
		MaxSize: c.maxEntries,
		HitRate: rate,
	}
}

// DetailedStats returns the full counter snapshot.
func (c *Cache) DetailedStats() DetailedStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return DetailedStats{
		Stats:             c.statsLocked(),
		Sets:              c.sets,
		Deletes:           c.deletes,
		Evictions:         c.evictions,
		CalculatedSize:    c.totalBytes,
		MaxCalculatedSize: c.maxBytes,
	}
}

// ResetStats zeroes all counters. Entries are untouched.
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits = 0
	c.misses = 0
	c.sets = 0
	c.deletes = 0
	c.evictions = 0
}

// Internal list operations (must be called with mu held)

func (c *Cache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *Cache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.fullKey)
	c.totalBytes -= e.size
}

// evictOldest removes the least recently used entry and logs the
// disposal. Returns false when the list is empty.
func (c *Cache) evictOldest() bool {
	oldest := c.tail.prev
	if oldest == c.head {
		return false
	}
	c.removeEntry(oldest)
	c.evictions++
	c.logger.Debug().
		Str("key", oldest.fullKey).
		Int64("size", oldest.size).
		Int64("hits", oldest.hits).
		Msg("Evicted cache entry")
	return true
}
