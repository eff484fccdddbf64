package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[key]
	return e, ok, nil
}

func (b *MemoryBackend) Put(ctx context.Context, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.Key] = entry
	return nil
}

func (b *MemoryBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time, batch int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stale []string
	for k, e := range b.entries {
		if e.CreatedAt.Before(cutoff) {
			stale = append(stale, k)
		}
	}
	sort.Strings(stale)
	if batch > 0 && len(stale) > batch {
		stale = stale[:batch]
	}
	for _, k := range stale {
		delete(b.entries, k)
	}
	return len(stale), nil
}

// Len returns the number of stored entries.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
