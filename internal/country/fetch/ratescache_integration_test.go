//go:build integration

package fetch

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/country/models"
	"atlas/internal/platform/config"
	platformredis "atlas/internal/platform/redis"
	"atlas/pkg/testutil/containers"
)

func TestRatesCache(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := platformredis.New(config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("round-trips a rate table", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		cache := NewRatesCache(client, time.Minute, logger)

		_, ok := cache.Get(ctx)
		assert.False(t, ok, "empty cache misses")

		rates := models.RateTable{"TST": 10, "KES": 129.5}
		cache.Put(ctx, rates)

		got, ok := cache.Get(ctx)
		require.True(t, ok)
		assert.Equal(t, rates, got)
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		cache := NewRatesCache(client, 100*time.Millisecond, logger)

		cache.Put(ctx, models.RateTable{"TST": 10})
		time.Sleep(200 * time.Millisecond)

		_, ok := cache.Get(ctx)
		assert.False(t, ok, "stale entries must not be served")
	})

	t.Run("nil client disables the cache", func(t *testing.T) {
		assert.Nil(t, NewRatesCache(nil, time.Minute, logger))
	})
}
