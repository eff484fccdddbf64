package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"interview-backend/internal/tier"
)

// PGBackend stores entries in the llm_cache table.
type PGBackend struct {
	DB *sql.DB
}

// NewPGBackend constructs a Postgres-backed cache backend.
func NewPGBackend(db *sql.DB) *PGBackend {
	return &PGBackend{DB: db}
}

func (b *PGBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e       Entry
		rawTier string
		payload []byte
	)
	row := b.DB.QueryRowContext(ctx, `
SELECT key, tier, result, created_at FROM llm_cache WHERE key = $1`, key)
	if err := row.Scan(&e.Key, &rawTier, &payload, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	if err := json.Unmarshal(payload, &e.Result); err != nil {
		return Entry{}, false, err
	}
	e.Tier = tier.Tier(rawTier)
	return e, true, nil
}

func (b *PGBackend) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return err
	}
	_, err = b.DB.ExecContext(ctx, `
INSERT INTO llm_cache (key, tier, result, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET tier = EXCLUDED.tier, result = EXCLUDED.result, created_at = EXCLUDED.created_at`,
		entry.Key, string(entry.Tier), payload, entry.CreatedAt)
	return err
}

func (b *PGBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time, batch int) (int, error) {
	res, err := b.DB.ExecContext(ctx, `
DELETE FROM llm_cache WHERE key IN (
	SELECT key FROM llm_cache WHERE created_at < $1 ORDER BY created_at LIMIT $2
)`, cutoff, batch)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
