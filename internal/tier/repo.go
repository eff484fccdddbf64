package tier

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no subscription record exists for the user.
var ErrNotFound = errors.New("subscription not found")

// Subscription is the stored tier record for one user key.
type Subscription struct {
	UserKey   string    `json:"user_key"`
	Tier      string    `json:"tier"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repo persists subscription records.
type Repo interface {
	Get(ctx context.Context, userKey string) (Subscription, error)
	Upsert(ctx context.Context, sub Subscription) error
	// List returns every record, most recently updated first.
	List(ctx context.Context) ([]Subscription, error)
}
