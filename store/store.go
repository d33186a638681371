// Package store defines the key-value storage abstraction used by omegacache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). Keys passed in are logical keys; any
// prefixing or charset handling is the store's own business and must be applied
// consistently to every operation, including PutIfAllAbsent.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrScriptUnavailable is returned by PutIfAllAbsent when the store has no
// atomic multi-key operation available. Callers degrade to "not guaranteed".
var ErrScriptUnavailable = errors.New("store: atomic put-if-all-absent unavailable")

// Store is a byte store with per-entry TTLs and a few multi-key operations.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteMany removes keys and returns how many existed.
	DeleteMany(ctx context.Context, keys []string) (int64, error)

	// Exists reports whether key is present, without reading its value.
	Exists(ctx context.Context, key string) (bool, error)

	// CountExisting returns how many of keys are present.
	CountExisting(ctx context.Context, keys []string) (int64, error)

	// PutIfAllAbsent atomically checks that none of keys exist and, if so, sets
	// every one of them with ttl. It returns false when any key existed; no key
	// is written in that case.
	PutIfAllAbsent(ctx context.Context, keys []string, ttl time.Duration) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
