package tier

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo stores subscriptions in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// NewPGRepo constructs a Postgres-backed subscription repository.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

func (r *PGRepo) Get(ctx context.Context, userKey string) (Subscription, error) {
	var sub Subscription
	row := r.DB.QueryRowContext(ctx, `
SELECT user_key, tier, updated_at FROM subscriptions WHERE user_key = $1`, userKey)
	if err := row.Scan(&sub.UserKey, &sub.Tier, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}
	return sub, nil
}

func (r *PGRepo) Upsert(ctx context.Context, sub Subscription) error {
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO subscriptions (user_key, tier, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (user_key) DO UPDATE SET tier = EXCLUDED.tier, updated_at = EXCLUDED.updated_at`,
		sub.UserKey, sub.Tier, sub.UpdatedAt)
	return err
}

func (r *PGRepo) List(ctx context.Context) ([]Subscription, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT user_key, tier, updated_at FROM subscriptions ORDER BY updated_at DESC, user_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.UserKey, &sub.Tier, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
