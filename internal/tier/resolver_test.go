package tier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Get(ctx context.Context, userKey string) (Subscription, error) {
	return Subscription{}, errors.New("db down")
}

func (failingRepo) Upsert(ctx context.Context, sub Subscription) error {
	return errors.New("db down")
}

func (failingRepo) List(ctx context.Context) ([]Subscription, error) {
	return nil, errors.New("db down")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Upsert(ctx, Subscription{UserKey: "pro@example.com", Tier: "Yearly"}))
	require.NoError(t, repo.Upsert(ctx, Subscription{UserKey: "odd@example.com", Tier: "platinum"}))
	r := NewResolver(repo)

	assert.Equal(t, Yearly, r.Resolve(ctx, "pro@example.com"))
	assert.Equal(t, Free, r.Resolve(ctx, "odd@example.com"))
	assert.Equal(t, Free, r.Resolve(ctx, "nobody@example.com"))
	assert.Equal(t, Free, r.Resolve(ctx, ""))
}

func TestResolveBackendErrorIsFree(t *testing.T) {
	r := NewResolver(failingRepo{})
	assert.Equal(t, Free, r.Resolve(context.Background(), "pro@example.com"))
}

func TestSetThenResolve(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryRepo())
	require.NoError(t, r.Set(ctx, "a@example.com", Lifetime))
	assert.Equal(t, Lifetime, r.Resolve(ctx, "a@example.com"))
}

func TestParseAndPaid(t *testing.T) {
	tests := []struct {
		raw  string
		want Tier
		ok   bool
		paid bool
	}{
		{raw: "free", want: Free, ok: true},
		{raw: " MONTHLY ", want: Monthly, ok: true, paid: true},
		{raw: "yearly", want: Yearly, ok: true, paid: true},
		{raw: "lifetime", want: Lifetime, ok: true, paid: true},
		{raw: "gold", want: Free, ok: false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.paid, got.Paid(), tt.raw)
	}
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "jane@example.com", UserKey("uid-1", " Jane@Example.com "))
	assert.Equal(t, "uid-1", UserKey("uid-1", ""))
}
