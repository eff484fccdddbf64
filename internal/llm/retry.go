package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"interview-backend/internal/shared/telemetry"
)

// RetryPolicy controls how many times and how patiently a model call is retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

// DefaultRetryPolicy is three attempts waiting 2s then 4s, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     10 * time.Second,
		AttemptTimeout:  30 * time.Second,
	}
}

// Retrier invokes a Client with bounded retries on transient failures.
type Retrier struct {
	policy RetryPolicy

	// Sleep waits between attempts; tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait with the failed attempt number.
	OnRetry func(attempt int, wait time.Duration, err error)
	// Classify decides whether an error is retryable.
	Classify func(error) bool
}

// NewRetrier constructs a Retrier, filling zero policy fields with defaults.
func NewRetrier(policy RetryPolicy) *Retrier {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = def.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = def.MaxInterval
	}
	return &Retrier{
		policy:   policy,
		Sleep:    sleepContext,
		Classify: IsTransient,
	}
}

// Policy returns the effective retry policy.
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Invoke calls client.Complete until it succeeds, fails fatally or attempts run out.
func (r *Retrier) Invoke(ctx context.Context, client Client, prompt string) (string, error) {
	if client == nil {
		return "", ErrNotConfigured
	}

	intervals := &backoff.ExponentialBackOff{
		InitialInterval:     r.policy.InitialInterval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         r.policy.MaxInterval,
	}
	intervals.Reset()

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.attempt(ctx, client, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("llm invoke: %w", ctx.Err())
		}
		if !r.Classify(err) {
			return "", unwrapPermanent(err)
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		wait := intervals.NextBackOff()
		if r.OnRetry != nil {
			r.OnRetry(attempt, wait, err)
		}
		telemetry.Warn("llm.retry", map[string]any{
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   telemetry.Truncate(err.Error(), 200),
		})
		if err := r.Sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("llm invoke: %w", err)
		}
	}
	return "", fmt.Errorf("llm invoke failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}

func (r *Retrier) attempt(ctx context.Context, client Client, prompt string) (string, error) {
	if r.policy.AttemptTimeout <= 0 {
		return client.Complete(ctx, prompt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()

	out, err := client.Complete(attemptCtx, prompt)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %w", ErrAttemptTimeout, err)
	}
	return out, err
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
