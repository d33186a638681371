// Package bloom provides approximate set membership used to short-circuit
// reads for keys that were never cached.
//
// Filters never report a false negative for a key that was added. Parameters
// (expected insertions and false-positive probability) are fixed the first
// time a filter is initialized; later TryInit calls leave them untouched.
package bloom

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultName               = "cache_penetration_bloom_filter"
	DefaultExpectedInsertions = 64
	DefaultFalseProbability   = 0.03
)

var ErrNotInitialized = errors.New("bloom: filter is not initialized")

// Filter is the membership view the cache consults and feeds.
type Filter interface {
	Add(ctx context.Context, key string) error
	// Contains reports false only when key was definitely never added.
	Contains(ctx context.Context, key string) (bool, error)
}

// Initializer is implemented by filters whose parameters are set once.
type Initializer interface {
	// TryInit sets the parameters if the filter has none yet and reports
	// whether it did.
	TryInit(ctx context.Context, expectedInsertions uint, falseProbability float64) (bool, error)
}

func validate(n uint, p float64) error {
	if n == 0 {
		return fmt.Errorf("bloom: expected insertions must be > 0")
	}
	if !(p > 0 && p < 1) {
		return fmt.Errorf("bloom: false probability must be in (0,1), got %v", p)
	}
	return nil
}
