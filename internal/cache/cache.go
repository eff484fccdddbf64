package cache

import (
	"context"
	"errors"
	"time"

	"interview-backend/internal/questions"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/shared/util"
	"interview-backend/internal/tier"
)

const (
	// DefaultTTL is how long a generated result stays servable.
	DefaultTTL = 24 * time.Hour
	// DefaultCleanupBatch bounds how many rows one cleanup round deletes.
	DefaultCleanupBatch = 500
)

// Entry is one cached generation result.
type Entry struct {
	Key       string           `json:"key"`
	Tier      tier.Tier        `json:"tier"`
	Result    questions.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// Backend is the persistence behind Cache.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	// DeleteOlderThan removes up to batch entries created before cutoff
	// and returns how many it removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batch int) (int, error)
}

// Fingerprint derives the cache key for a request.
func Fingerprint(jobDescription, resume string, t tier.Tier) string {
	return util.SHA256Hex(jobDescription + "::" + resume + "::" + string(t))
}

// Cache applies TTL semantics over a Backend.
type Cache struct {
	backend Backend
	ttl     time.Duration
	batch   int
	now     func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCleanupBatch overrides DefaultCleanupBatch.
func WithCleanupBatch(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.batch = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs a Cache over backend.
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		batch:   DefaultCleanupBatch,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the logical entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Lookup returns a fresh entry's result. Stale entries, missing entries and
// backend failures are all misses; stale entries are left for Cleanup.
func (c *Cache) Lookup(ctx context.Context, key string) (questions.Result, bool) {
	entry, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		telemetry.Warn("cache.lookup_failed", map[string]any{"key": key, "error": err})
		return questions.Result{}, false
	}
	if !ok {
		return questions.Result{}, false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		return questions.Result{}, false
	}
	return entry.Result, true
}

// Store upserts result under key; the last write wins.
func (c *Cache) Store(ctx context.Context, key string, result questions.Result, t tier.Tier) error {
	if key == "" {
		return errors.New("cache key is required")
	}
	return c.backend.Put(ctx, Entry{
		Key:       key,
		Tier:      t,
		Result:    result,
		CreatedAt: c.now().UTC(),
	})
}

// Cleanup deletes every entry older than the TTL as of now, in batches.
func (c *Cache) Cleanup(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-c.ttl)
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.backend.DeleteOlderThan(ctx, cutoff, c.batch)
		total += n
		if err != nil {
			return total, err
		}
		if n < c.batch {
			break
		}
	}
	telemetry.Info("cache.cleanup", map[string]any{"deleted": total, "cutoff": cutoff.Format(time.RFC3339)})
	return total, nil
}
