package dispatch

import (
	"context"
	"time"

	"github.com/go-notify-dispatch/internal/domain"
)

// Defaults for the fixed-window rate limit.
const (
	DefaultWindow   = time.Minute
	DefaultCapacity = 30
)

// RateLimitStore is the shared window-counter store. Admit must be atomic:
// a single increment-and-check, never a read followed by a separate write,
// so concurrent workers cannot both slip past capacity on a stale read.
type RateLimitStore interface {
	// Admit increments the counter for key when its window is still open and
	// under capacity, or starts a fresh window (count=1) when the stored one
	// is stale or missing. Returns false when the open window is full.
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, capacity int) (bool, error)
	// Get returns the current state for key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (*domain.RateLimitState, error)
}

// Guard decides whether a dispatch attempt may consume a send slot.
type Guard struct {
	store    RateLimitStore
	window   time.Duration
	capacity int
	now      func() time.Time
}

func NewGuard(store RateLimitStore, window time.Duration, capacity int) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Guard{store: store, window: window, capacity: capacity, now: time.Now}
}

// Admit reports whether a send for key fits in the current window.
// Rate limiting is opt-in per message: an empty key always admits.
func (g *Guard) Admit(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return true, nil
	}
	return g.store.Admit(ctx, key, g.now(), g.window, g.capacity)
}
