package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-backend/internal/tier"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBackend(rdb, 48*time.Hour), mr
}

func TestRedisBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t)

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Put(ctx, Entry{Key: "k", Tier: tier.Monthly, Result: sampleResult(), CreatedAt: created}))
	assert.True(t, mr.Exists(redisKeyPrefix+"k"))
	assert.Equal(t, 48*time.Hour, mr.TTL(redisKeyPrefix+"k"))

	e, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tier.Monthly, e.Tier)
	assert.True(t, created.Equal(e.CreatedAt))
	assert.Equal(t, sampleResult().Technical, e.Result.Technical)
}

func TestRedisBackendCleanup(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t)

	old := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	now := old.Add(30 * time.Hour)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, b.Put(ctx, Entry{Key: k, Tier: tier.Free, CreatedAt: old}))
	}
	require.NoError(t, b.Put(ctx, Entry{Key: "fresh", Tier: tier.Free, CreatedAt: now}))
	require.NoError(t, mr.Set(redisKeyPrefix+"garbage", "not json"))
	require.NoError(t, mr.Set("unrelated", "x"))

	c := New(b, WithCleanupBatch(2))
	n, err := c.Cleanup(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, mr.Exists(redisKeyPrefix+"fresh"))
	assert.True(t, mr.Exists("unrelated"))
	assert.False(t, mr.Exists(redisKeyPrefix+"a"))
}
