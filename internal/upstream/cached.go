// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package upstream

import (
	"context"
	"sort"
	"strings"

	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/models"
)

// CacheKey builds the canonical cache key for an endpoint and parameter
// set: "{endpoint}?{k1=v1&k2=v2...}" with keys sorted lexicographically,
// and the query omitted when there are no parameters.
func CacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// GetCached serves a GET through the response cache. On a hit the stored
// envelope is returned with the cached flag set; on a miss the network
// call runs and a successful envelope is stored under the type's TTL.
func (c *Client) GetCached(ctx context.Context, t cache.Type, endpoint string, params map[string]string) (*models.APIEnvelope, error) {
	if !c.cfg.EnableCache {
		return c.Get(ctx, endpoint, params)
	}

	key := CacheKey(endpoint, params)
	if result := c.store.Get(t, key); result.Hit {
		if env, ok := result.Value.(*models.APIEnvelope); ok {
			c.countRequest()
			c.countCached()
			return env.WithCached(true), nil
		}
	}

	env, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if setErr := c.store.Set(t, key, env); setErr != nil {
		// A failed store never fails the request.
		c.logger.Warn().Err(setErr).Str("key", key).Msg("Failed to cache upstream response")
	}
	return env, nil
}

// InvalidateCache clears one cache type.
func (c *Client) InvalidateCache(t cache.Type) int {
	return c.store.DeleteByType(t)
}

// InvalidateAllCache clears the whole response cache.
func (c *Client) InvalidateAllCache() {
	c.store.Clear()
}
