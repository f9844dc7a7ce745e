package http

import (
	"context"

	"github.com/go-notify-dispatch/internal/domain"
)

// RateLimitReader is the minimal interface the router requires for window
// state inspection.
type RateLimitReader interface {
	Get(ctx context.Context, key string) (*domain.RateLimitState, error)
}

// BatchIngester is the minimal interface the router requires for triggering
// a batch load from object storage.
type BatchIngester interface {
	IngestBatch(ctx context.Context, key string) (int, error)
}
