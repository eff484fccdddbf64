package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/tier"
)

type failingStore struct {
	*MemoryStore
}

func (failingStore) AppendRecord(ctx context.Context, r Record) error {
	return errors.New("disk full")
}

func newTestRecorder(store Store) (*Recorder, *Quota) {
	q := NewQuota(NewMemoryCounter(), 3, time.UTC)
	return NewRecorder(store, q), q
}

func TestRecordChargesFreeTierOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r, q := newTestRecorder(store)

	require.NoError(t, r.Record(ctx, "uid-1", "Jane@Example.com", tier.Free, Summary{Technical: 5, Behavioral: 3, Followup: 2}))

	used, err := q.Used(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, used)

	records, err := store.ListRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].Total)
	assert.False(t, records[0].Pro)
	assert.NotEmpty(t, records[0].ID)
}

func TestRecordDoesNotChargePaidTier(t *testing.T) {
	ctx := context.Background()
	r, q := newTestRecorder(NewMemoryStore())

	require.NoError(t, r.Record(ctx, "uid-1", "pro@example.com", tier.Lifetime, Summary{Technical: 1, Insights: true}))

	used, err := q.Used(ctx, "pro@example.com")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestRecordChargesQuotaEvenWhenAppendFails(t *testing.T) {
	ctx := context.Background()
	r, q := newTestRecorder(failingStore{NewMemoryStore()})

	err := r.Record(ctx, "uid-1", "", tier.Free, Summary{Technical: 1})
	assert.Error(t, err)

	used, err := q.Used(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	r, q := newTestRecorder(NewMemoryStore())
	_, _ = q.Increment(ctx, "uid-1")

	snap, err := r.Snapshot(ctx, "uid-1", tier.Free)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Used)
	assert.Equal(t, 2, snap.Remaining)
	assert.False(t, snap.Unlimited)

	snap, err = r.Snapshot(ctx, "uid-1", tier.Monthly)
	require.NoError(t, err)
	assert.True(t, snap.Unlimited)
}

func TestRecordRequestStoresMetric(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r, _ := newTestRecorder(store)
	at := time.Now().UTC()

	r.RecordRequest(ctx, middleware.APIMetric{
		Endpoint:   "/api/v1/generate",
		Method:     "POST",
		StatusCode: 200,
		Duration:   1500 * time.Millisecond,
		UserID:     "uid-1",
		At:         at,
	})

	metrics, err := store.MetricsSince(ctx, at.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 1500.0, metrics[0].DurationMs)
	assert.NotEmpty(t, metrics[0].ID)
}
