package usage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisQuotaPrefix = "quota:"
	// Counters outlive their day so late reads near midnight still see them.
	redisQuotaTTL = 48 * time.Hour
)

// RedisCounter keeps daily counts as Redis integers.
type RedisCounter struct {
	rdb redis.UniversalClient
}

// NewRedisCounter constructs a Redis-backed daily counter.
func NewRedisCounter(rdb redis.UniversalClient) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Get(ctx context.Context, userKey, day string) (int, error) {
	n, err := c.rdb.Get(ctx, redisQuotaPrefix+dailyKey(userKey, day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCounter) Increment(ctx context.Context, userKey, day string) (int, error) {
	key := redisQuotaPrefix + dailyKey(userKey, day)
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, redisQuotaTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
