package usage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGStore persists analytics in Postgres.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed analytics store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) AppendRecord(ctx context.Context, r Record) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO usage_records (id, user_id, email, tier, pro, technical_qs, behavioral_qs, followup_qs, total_qs, has_insights, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.UserID, r.Email, r.Tier, r.Pro, r.Technical, r.Behavioral, r.Followup, r.Total, r.Insights, r.CreatedAt)
	return err
}

func (s *PGStore) AppendFeature(ctx context.Context, e FeatureEvent) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO feature_usage (id, user_id, feature, metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserID, e.Feature, meta, e.CreatedAt)
	return err
}

func (s *PGStore) AppendMetric(ctx context.Context, m APIMetric) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO api_metrics (id, endpoint, method, status_code, duration_ms, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Endpoint, m.Method, m.StatusCode, m.DurationMs, m.UserID, m.CreatedAt)
	return err
}

const recordColumns = `id, user_id, email, tier, pro, technical_qs, behavioral_qs, followup_qs, total_qs, has_insights, created_at`

func (s *PGStore) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+recordColumns+` FROM usage_records ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *PGStore) RecordsSince(ctx context.Context, since time.Time) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+recordColumns+` FROM usage_records WHERE created_at >= $1`, since)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Email, &r.Tier, &r.Pro, &r.Technical, &r.Behavioral, &r.Followup, &r.Total, &r.Insights, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) FeaturesSince(ctx context.Context, since time.Time) ([]FeatureEvent, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, feature, metadata, created_at FROM feature_usage WHERE created_at >= $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FeatureEvent
	for rows.Next() {
		var (
			e    FeatureEvent
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Feature, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Metadata)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PGStore) MetricsSince(ctx context.Context, since time.Time) ([]APIMetric, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, endpoint, method, status_code, duration_ms, user_id, created_at FROM api_metrics WHERE created_at >= $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []APIMetric
	for rows.Next() {
		var m APIMetric
		if err := rows.Scan(&m.ID, &m.Endpoint, &m.Method, &m.StatusCode, &m.DurationMs, &m.UserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PGCounter keeps daily counts in the daily_usage table.
type PGCounter struct {
	DB *sql.DB
}

// NewPGCounter constructs a Postgres-backed daily counter.
func NewPGCounter(db *sql.DB) *PGCounter {
	return &PGCounter{DB: db}
}

func (c *PGCounter) Get(ctx context.Context, userKey, day string) (int, error) {
	var n int
	err := c.DB.QueryRowContext(ctx, `
SELECT count FROM daily_usage WHERE user_key = $1 AND day = $2`, userKey, day).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (c *PGCounter) Increment(ctx context.Context, userKey, day string) (int, error) {
	var n int
	err := c.DB.QueryRowContext(ctx, `
INSERT INTO daily_usage (user_key, day, count) VALUES ($1, $2, 1)
ON CONFLICT (user_key, day) DO UPDATE SET count = daily_usage.count + 1
RETURNING count`, userKey, day).Scan(&n)
	return n, err
}
