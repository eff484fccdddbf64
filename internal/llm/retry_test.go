package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return "", s.errs[s.calls-1]
	}
	return "ok:" + prompt, nil
}

func newTestRetrier(slept *[]time.Duration) *Retrier {
	r := NewRetrier(DefaultRetryPolicy())
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return r
}

func TestRetrierSucceedsOnThirdAttempt(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(&slept)
	client := &scriptedClient{errs: []error{ErrRateLimited, ErrRateLimited}}

	out, err := r.Invoke(context.Background(), client, "p")
	require.NoError(t, err)
	assert.Equal(t, "ok:p", out)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)

	var total time.Duration
	for _, d := range slept {
		total += d
	}
	assert.GreaterOrEqual(t, total, 6*time.Second)
}

func TestRetrierStopsAfterMaxAttempts(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(&slept)
	client := &scriptedClient{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, nil}}

	_, err := r.Invoke(context.Background(), client, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, client.calls)
	assert.Len(t, slept, 2)
}

func TestRetrierFatalErrorPropagatesImmediately(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(&slept)
	fatal := &StatusError{Provider: "openai", StatusCode: http.StatusUnauthorized, Body: "bad key"}
	client := &scriptedClient{errs: []error{fatal}}

	_, err := r.Invoke(context.Background(), client, "p")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, slept)
}

func TestRetrierPermanentIsUnwrapped(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(&slept)
	inner := errors.New("schema rejected")
	client := &scriptedClient{errs: []error{backoff.Permanent(inner)}}

	_, err := r.Invoke(context.Background(), client, "p")
	assert.Equal(t, inner, err)
	assert.Equal(t, 1, client.calls)
}

func TestRetrierStopsWhenParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrier(DefaultRetryPolicy())
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		t.Fatalf("sleep should not be reached")
		return nil
	}
	client := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		cancel()
		return "", ErrRateLimited
	})

	_, err := r.Invoke(ctx, client, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrierAttemptTimeoutIsTransient(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(&slept)
	r.policy.AttemptTimeout = 5 * time.Millisecond

	calls := 0
	client := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "done", nil
	})

	out, err := r.Invoke(context.Background(), client, "p")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 2, calls)
}

func TestRetrierNilClient(t *testing.T) {
	_, err := NewRetrier(RetryPolicy{}).Invoke(context.Background(), nil, "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBackoffIntervalsAreCapped(t *testing.T) {
	var slept []time.Duration
	r := NewRetrier(RetryPolicy{MaxAttempts: 5, InitialInterval: 2 * time.Second, MaxInterval: 10 * time.Second})
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	client := &scriptedClient{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited}}

	_, _ = r.Invoke(context.Background(), client, "p")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second}, slept)
}
