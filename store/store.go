package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has already expired.
var ErrNotFound = errors.New("store: key not found")

// Store is a process-external key-value store with per-key expiry. It holds
// short-lived OAuth state tokens and token records; a zero ttl means the
// entry never expires.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// Take atomically reads and deletes a key, so concurrent callers cannot
	// both observe the value.
	Take(ctx context.Context, key string) ([]byte, error)
}
