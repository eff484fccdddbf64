package usage

import (
	"context"
	"time"
)

// DefaultFreeDailyLimit is the number of free generations per calendar day.
const DefaultFreeDailyLimit = 3

// Quota enforces the free-tier daily generation limit. Days roll over at
// midnight in the configured location.
type Quota struct {
	counter Counter
	limit   int
	loc     *time.Location
	now     func() time.Time
}

// NewQuota constructs a Quota. A nil loc means time.Local.
func NewQuota(counter Counter, limit int, loc *time.Location) *Quota {
	if limit < 0 {
		limit = DefaultFreeDailyLimit
	}
	if loc == nil {
		loc = time.Local
	}
	return &Quota{counter: counter, limit: limit, loc: loc, now: time.Now}
}

// WithClock returns q with now replaced.
func (q *Quota) WithClock(now func() time.Time) *Quota {
	cp := *q
	cp.now = now
	return &cp
}

// Limit returns the daily limit.
func (q *Quota) Limit() int {
	return q.limit
}

// Day returns today's key, YYYY-MM-DD in the quota location.
func (q *Quota) Day() string {
	return q.now().In(q.loc).Format(time.DateOnly)
}

// Used returns how many generations userKey has made today.
func (q *Quota) Used(ctx context.Context, userKey string) (int, error) {
	return q.counter.Get(ctx, userKey, q.Day())
}

// Remaining returns how many generations userKey has left today, never negative.
func (q *Quota) Remaining(ctx context.Context, userKey string) (int, error) {
	used, err := q.Used(ctx, userKey)
	if err != nil {
		return 0, err
	}
	if used >= q.limit {
		return 0, nil
	}
	return q.limit - used, nil
}

// Increment charges one generation to userKey for today.
func (q *Quota) Increment(ctx context.Context, userKey string) (int, error) {
	return q.counter.Increment(ctx, userKey, q.Day())
}

// Check returns ErrLimitReached when userKey has no generations left today.
func (q *Quota) Check(ctx context.Context, userKey string) error {
	remaining, err := q.Remaining(ctx, userKey)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return ErrLimitReached
	}
	return nil
}
