package fetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"atlas/internal/country/models"
	platformredis "atlas/internal/platform/redis"
)

const ratesCacheKey = "atlas:rates:latest"

// RatesCache keeps the last successful exchange-rate payload in Redis for a
// short TTL so back-to-back refreshes don't hammer the upstream. It is a pure
// optimization: every failure path degrades to a direct fetch.
type RatesCache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRatesCache wraps an optional Redis client. Returns nil when the client is
// nil so callers can treat the cache as absent.
func NewRatesCache(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *RatesCache {
	if client == nil {
		return nil
	}
	return &RatesCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached rate table if present and fresh.
func (c *RatesCache) Get(ctx context.Context) (models.RateTable, bool) {
	payload, err := c.client.Get(ctx, ratesCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rates models.RateTable
	if err := json.Unmarshal(payload, &rates); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cached rates", "error", err)
		return nil, false
	}
	if len(rates) == 0 {
		return nil, false
	}
	return rates, true
}

// Put stores the rate table with the configured TTL. Failures are logged and
// swallowed; the refresh already has the payload in hand.
func (c *RatesCache) Put(ctx context.Context, rates models.RateTable) {
	payload, err := json.Marshal(rates)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode rates for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, ratesCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to cache rates", "error", err)
	}
}
