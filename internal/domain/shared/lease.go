package shared

import (
	"context"
	"time"
)

// LeaseStore hands out short-lived exclusive leases on string keys.
// It is used to keep a single refund submission in flight per ticket.
type LeaseStore interface {
	// TryAcquire takes the lease for key if nobody holds it.
	// Returns false when the key is already leased.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lease. Releasing an unknown key is not an error.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
