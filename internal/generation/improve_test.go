package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-backend/internal/llm"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

func proCaller(t *testing.T, f *fixture) Caller {
	t.Helper()
	require.NoError(t, f.tiers.Set(context.Background(), "pro@example.com", tier.Monthly))
	return Caller{UserID: "uid-pro", Email: "pro@example.com"}
}

func TestImprovePaidCallerGetsPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	caller := proCaller(t, f)
	f.model.answer = "```\nStrong match overall.\n- Add Kubernetes experience\n```"

	resp, err := f.svc.Improve(ctx, caller, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Strong match overall.\n- Add Kubernetes experience", resp.Improvements)
	assert.Equal(t, "monthly", resp.Tier)
	assert.Equal(t, 1, f.model.Calls())
	assert.Contains(t, f.model.last, "improvement plan")

	assert.Zero(t, f.backend.Len())
	records, err := f.store.ListRecords(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	features, err := f.store.FeaturesSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, usage.FeatureImproveResume, features[0].Feature)
}

func TestImproveFreeCallerIsRejected(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.svc.Improve(context.Background(), freeCaller(), validRequest())
	require.ErrorIs(t, err, ErrProRequired)
	assert.Zero(t, f.model.Calls())

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageTierResolving, se.Stage)
}

func TestImproveValidatesBeforeTier(t *testing.T) {
	f := newFixture(t, 3)
	req := validRequest()
	req.Resume = "too short"

	_, err := f.svc.Improve(context.Background(), freeCaller(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldResume, verr.Field)
}

func TestImproveEmptyAnswer(t *testing.T) {
	f := newFixture(t, 3)
	caller := proCaller(t, f)
	f.model.answer = "```\n   \n```"

	_, err := f.svc.Improve(context.Background(), caller, validRequest())
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestImproveRetriesTransientFailures(t *testing.T) {
	f := newFixture(t, 3)
	caller := proCaller(t, f)
	f.model.err = llm.ErrRateLimited

	_, err := f.svc.Improve(context.Background(), caller, validRequest())
	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, 3, f.model.Calls())
}
