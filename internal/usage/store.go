package usage

import (
	"context"
	"time"
)

// Store is the append-only analytics log.
type Store interface {
	AppendRecord(ctx context.Context, r Record) error
	AppendFeature(ctx context.Context, e FeatureEvent) error
	AppendMetric(ctx context.Context, m APIMetric) error

	// ListRecords returns the newest records first.
	ListRecords(ctx context.Context, limit int) ([]Record, error)
	RecordsSince(ctx context.Context, since time.Time) ([]Record, error)
	FeaturesSince(ctx context.Context, since time.Time) ([]FeatureEvent, error)
	MetricsSince(ctx context.Context, since time.Time) ([]APIMetric, error)
}

// Counter holds per-user per-day generation counts. Increment must be atomic.
type Counter interface {
	Get(ctx context.Context, userKey, day string) (int, error)
	Increment(ctx context.Context, userKey, day string) (int, error)
}
