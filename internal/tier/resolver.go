package tier

import (
	"context"
	"errors"

	"interview-backend/internal/shared/telemetry"
)

// Resolver determines a user's tier. It never fails: any problem yields Free.
type Resolver struct {
	repo Repo
}

// NewResolver constructs a Resolver over repo.
func NewResolver(repo Repo) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the tier recorded for userKey, or Free.
func (r *Resolver) Resolve(ctx context.Context, userKey string) Tier {
	if r == nil || r.repo == nil || userKey == "" {
		return Free
	}
	sub, err := r.repo.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Error("tier.lookup_failed", map[string]any{"user_key": userKey, "error": err})
		}
		return Free
	}
	t, ok := Parse(sub.Tier)
	if !ok {
		telemetry.Warn("tier.unknown_value", map[string]any{"user_key": userKey, "tier": sub.Tier})
		return Free
	}
	return t
}

// Set records tier t for userKey.
func (r *Resolver) Set(ctx context.Context, userKey string, t Tier) error {
	if r == nil || r.repo == nil {
		return errors.New("tier repository not configured")
	}
	return r.repo.Upsert(ctx, Subscription{UserKey: userKey, Tier: t.String()})
}

// Subscribers lists the users on a paid tier, most recently updated first.
func (r *Resolver) Subscribers(ctx context.Context) ([]Subscription, error) {
	if r == nil || r.repo == nil {
		return nil, errors.New("tier repository not configured")
	}
	subs, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	paid := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		if t, ok := Parse(sub.Tier); ok && t.Paid() {
			sub.Tier = t.String()
			paid = append(paid, sub)
		}
	}
	return paid, nil
}
