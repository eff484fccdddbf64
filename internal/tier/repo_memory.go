package tier

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory subscription repository.
type MemoryRepo struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{subs: make(map[string]Subscription)}
}

func (r *MemoryRepo) Get(ctx context.Context, userKey string) (Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[userKey]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, sub Subscription) error {
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.UserKey] = sub
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Subscription, error) {
	r.mu.RLock()
	out := make([]Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].UserKey < out[j].UserKey
	})
	return out, nil
}
