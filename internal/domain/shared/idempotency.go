package shared

import (
	"context"
	"time"
)

//go:generate mockgen -source=idempotency.go -destination=mocks/mock_idempotency.go -package=mock_shared

// IdempotencyStore remembers keys that were already processed. It guards
// both outbox event handlers and client retried POST requests.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}
