package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/tier"
)

// FeatureGenerateQuestions is the feature name recorded for generations.
const (
	FeatureGenerateQuestions = "generate_questions"
	FeatureImproveResume     = "improve_resume"
)

// Recorder writes usage records, feature events and request metrics.
type Recorder struct {
	store Store
	quota *Quota
	now   func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(store Store, quota *Quota) *Recorder {
	return &Recorder{store: store, quota: quota, now: time.Now}
}

// Quota returns the daily quota enforced alongside recording.
func (r *Recorder) Quota() *Quota {
	return r.quota
}

// Record appends one usage record and, for free callers, charges the daily
// quota exactly once. The quota is charged even if the append fails.
func (r *Recorder) Record(ctx context.Context, userID, email string, t tier.Tier, s Summary) error {
	rec := Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		Email:      email,
		Tier:       t.String(),
		Pro:        t.Paid(),
		Technical:  s.Technical,
		Behavioral: s.Behavioral,
		Followup:   s.Followup,
		Total:      s.Total(),
		Insights:   s.Insights,
		CreatedAt:  r.now().UTC(),
	}
	appendErr := r.store.AppendRecord(ctx, rec)
	if appendErr != nil {
		telemetry.Error("usage.record_failed", map[string]any{"user_id": userID, "error": appendErr})
	}

	if !t.Paid() && r.quota != nil {
		if _, err := r.quota.Increment(ctx, tier.UserKey(userID, email)); err != nil {
			telemetry.Error("usage.quota_increment_failed", map[string]any{"user_id": userID, "error": err})
			return err
		}
	}
	return appendErr
}

// TrackFeature appends a feature usage event.
func (r *Recorder) TrackFeature(ctx context.Context, userID, feature string, metadata map[string]any) error {
	err := r.store.AppendFeature(ctx, FeatureEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Feature:   feature,
		Metadata:  metadata,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		telemetry.Error("usage.feature_failed", map[string]any{"user_id": userID, "feature": feature, "error": err})
	}
	return err
}

// RecordMetric appends an API metric.
func (r *Recorder) RecordMetric(ctx context.Context, m APIMetric) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now().UTC()
	}
	err := r.store.AppendMetric(ctx, m)
	if err != nil {
		telemetry.Warn("usage.metric_failed", map[string]any{"endpoint": m.Endpoint, "error": err})
	}
	return err
}

// RecordRequest adapts RecordMetric to the HTTP metrics middleware.
func (r *Recorder) RecordRequest(ctx context.Context, m middleware.APIMetric) {
	_ = r.RecordMetric(ctx, APIMetric{
		Endpoint:   m.Endpoint,
		Method:     m.Method,
		StatusCode: m.StatusCode,
		DurationMs: float64(m.Duration.Microseconds()) / 1000.0,
		UserID:     m.UserID,
		CreatedAt:  m.At,
	})
}

// Snapshot reports the caller's quota position for today.
func (r *Recorder) Snapshot(ctx context.Context, userKey string, t tier.Tier) (Snapshot, error) {
	snap := Snapshot{Tier: t.String(), Day: r.quota.Day(), Limit: r.quota.Limit()}
	if t.Paid() {
		snap.Unlimited = true
		return snap, nil
	}
	used, err := r.quota.Used(ctx, userKey)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Used = used
	snap.Remaining = max(0, snap.Limit-used)
	return snap, nil
}

// Recent returns the newest usage records.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	return r.store.ListRecords(ctx, limit)
}

var _ middleware.MetricSink = (*Recorder)(nil)
