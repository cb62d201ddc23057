package store

import (
	"context"
	"time"
)

// Store is the key-value store every piece of shared state lives in.
// It is deliberately minimal: get, put with per-entry TTL, delete. No
// transactions and no atomic read-modify-write are assumed; callers that
// need stronger guarantees must document what they lose without them.
type Store interface {
	// Get returns the value for key. The bool reports whether the key
	// exists; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put writes value under key with the given TTL. A ttl of zero means
	// no expiry. Writing an existing key replaces the value and resets
	// its TTL.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
