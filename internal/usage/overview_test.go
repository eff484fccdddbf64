package usage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewAggregatesLastSevenDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	r, _ := newTestRecorder(store)
	r.now = func() time.Time { return now }

	old := now.Add(-8 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	for _, m := range []APIMetric{
		{StatusCode: 200, DurationMs: 1000, CreatedAt: recent},
		{StatusCode: 200, DurationMs: 2000, CreatedAt: recent},
		{StatusCode: 429, DurationMs: 3000, CreatedAt: recent},
		{StatusCode: 500, DurationMs: 9000, CreatedAt: old},
	} {
		require.NoError(t, store.AppendMetric(ctx, m))
	}
	for _, f := range []string{"generate_questions", "generate_questions", "parse_resume"} {
		require.NoError(t, store.AppendFeature(ctx, FeatureEvent{Feature: f, CreatedAt: recent}))
	}
	require.NoError(t, store.AppendRecord(ctx, Record{Email: "a@example.com", CreatedAt: recent}))
	require.NoError(t, store.AppendRecord(ctx, Record{Email: "a@example.com", CreatedAt: recent}))
	require.NoError(t, store.AppendRecord(ctx, Record{UserID: "uid-2", CreatedAt: recent}))
	require.NoError(t, store.AppendRecord(ctx, Record{Email: "old@example.com", CreatedAt: old}))

	o, err := r.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, o.TotalRequests)
	assert.Equal(t, 2.0, o.AvgResponseTimeSeconds)
	assert.Equal(t, map[int]int{200: 2, 429: 1}, o.StatusCodes)
	assert.Equal(t, 66.7, o.SuccessRate)
	assert.Equal(t, 2, o.ActiveUsers)
	require.NotNil(t, o.MostUsedFeature)
	assert.Equal(t, "generate_questions", *o.MostUsedFeature)
}

func TestOverviewEmpty(t *testing.T) {
	r, _ := newTestRecorder(NewMemoryStore())
	o, err := r.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, o.TotalRequests)
	assert.Zero(t, o.SuccessRate)
	assert.Nil(t, o.MostUsedFeature)
}

func TestErrorsReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	r, _ := newTestRecorder(store)
	r.now = func() time.Time { return now }

	for i := 0; i < 11; i++ {
		require.NoError(t, store.AppendMetric(ctx, APIMetric{Endpoint: "/api/v1/generate", StatusCode: 503, CreatedAt: now.Add(-time.Minute)}))
	}
	require.NoError(t, store.AppendMetric(ctx, APIMetric{Endpoint: "/api/v1/usage", StatusCode: 401, CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, store.AppendMetric(ctx, APIMetric{Endpoint: "/api/v1/usage", StatusCode: 200, CreatedAt: now.Add(-time.Minute)}))

	report, err := r.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, report.TotalErrors)
	assert.Equal(t, []string{"/api/v1/generate"}, report.CriticalEndpoints)
	assert.Equal(t, 1, report.ErrorsByEndpoint["/api/v1/usage"].Codes[401])
}

func TestUsersRanksLastThirtyDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	r, _ := newTestRecorder(store)
	r.now = func() time.Time { return now }

	recent := now.Add(-time.Hour)
	twoWeeks := now.Add(-14 * 24 * time.Hour)
	expired := now.Add(-31 * 24 * time.Hour)
	for _, rec := range []Record{
		{Email: "busy@example.com", Tier: "free", CreatedAt: twoWeeks},
		{Email: "busy@example.com", Tier: "monthly", Pro: true, CreatedAt: recent},
		{Email: "busy@example.com", Tier: "monthly", Pro: true, CreatedAt: recent},
		{Email: "lapsed@example.com", Tier: "free", CreatedAt: twoWeeks},
		{UserID: "uid-guest", Tier: "free", CreatedAt: recent},
		{Email: "gone@example.com", Tier: "yearly", Pro: true, CreatedAt: expired},
	} {
		require.NoError(t, store.AppendRecord(ctx, rec))
	}

	u, err := r.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last_30_days", u.Period)
	assert.Equal(t, 3, u.TotalUsers)
	assert.Equal(t, 2, u.ActiveUsers)
	assert.Equal(t, 1, u.ProUsers)
	assert.Equal(t, 2, u.FreeUsers)
	assert.Equal(t, 33.3, u.ConversionRate)

	require.Len(t, u.TopUsers, 3)
	assert.Equal(t, "busy@example.com", u.TopUsers[0].Email)
	assert.Equal(t, 3, u.TopUsers[0].Generations)
	assert.Equal(t, "monthly", u.TopUsers[0].Tier)
	assert.Equal(t, recent, u.TopUsers[0].LastSeen)
	assert.Equal(t, "uid-guest", u.TopUsers[2].UserID)
}

func TestUsersKeepsTopTen(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	r, _ := newTestRecorder(store)
	r.now = func() time.Time { return now }

	for i := 0; i < 12; i++ {
		email := fmt.Sprintf("user%02d@example.com", i)
		for n := 0; n <= i; n++ {
			require.NoError(t, store.AppendRecord(ctx, Record{Email: email, Tier: "free", CreatedAt: now.Add(-time.Minute)}))
		}
	}

	u, err := r.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, u.TotalUsers)
	require.Len(t, u.TopUsers, 10)
	assert.Equal(t, "user11@example.com", u.TopUsers[0].Email)
	assert.Equal(t, 12, u.TopUsers[0].Generations)
	assert.Equal(t, "user02@example.com", u.TopUsers[9].Email)
}

func TestUsersEmpty(t *testing.T) {
	r, _ := newTestRecorder(NewMemoryStore())
	u, err := r.Users(context.Background())
	require.NoError(t, err)
	assert.Zero(t, u.TotalUsers)
	assert.Zero(t, u.ConversionRate)
	assert.NotNil(t, u.TopUsers)
}
