package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "llmcache:"

// RedisBackend stores entries as JSON strings. Keys also carry a physical
// expiry so abandoned entries disappear even without Cleanup.
type RedisBackend struct {
	rdb         redis.UniversalClient
	physicalTTL time.Duration
}

// NewRedisBackend constructs a Redis-backed cache backend.
func NewRedisBackend(rdb redis.UniversalClient, physicalTTL time.Duration) *RedisBackend {
	return &RedisBackend{rdb: rdb, physicalTTL: physicalTTL}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := b.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (b *RedisBackend) Put(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.rdb.Set(ctx, redisKeyPrefix+entry.Key, data, b.physicalTTL).Err()
}

// DeleteOlderThan scans the whole keyspace once and removes up to batch stale
// entries. Undecodable values are treated as stale.
func (b *RedisBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time, batch int) (int, error) {
	var (
		cursor uint64
		stale  []string
	)
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, redisKeyPrefix+"*", int64(batch)).Result()
		if err != nil {
			return 0, err
		}
		if len(keys) > 0 {
			values, err := b.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return 0, err
			}
			for i, v := range values {
				raw, ok := v.(string)
				if !ok {
					continue
				}
				var e Entry
				if err := json.Unmarshal([]byte(raw), &e); err != nil || e.CreatedAt.Before(cutoff) {
					stale = append(stale, keys[i])
				}
			}
		}
		cursor = next
		if cursor == 0 || (batch > 0 && len(stale) >= batch) {
			break
		}
	}
	if batch > 0 && len(stale) > batch {
		stale = stale[:batch]
	}
	if len(stale) == 0 {
		return 0, nil
	}

	pipe := b.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, 0, len(stale))
	for _, k := range stale {
		cmds = append(cmds, pipe.Del(ctx, k))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	deleted := 0
	for _, cmd := range cmds {
		deleted += int(cmd.Val())
	}
	return deleted, nil
}
