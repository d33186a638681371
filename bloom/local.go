package bloom

import (
	"context"
	"sync"

	bb "github.com/bits-and-blooms/bloom/v3"
)

// Local is an in-process filter. The zero value is uninitialized; call
// TryInit or use NewLocal.
type Local struct {
	mu sync.RWMutex
	f  *bb.BloomFilter
}

var (
	_ Filter      = (*Local)(nil)
	_ Initializer = (*Local)(nil)
)

// NewLocal returns an initialized filter sized for n insertions at
// false-positive rate p. Invalid parameters fall back to the defaults.
func NewLocal(n uint, p float64) *Local {
	if validate(n, p) != nil {
		n, p = DefaultExpectedInsertions, DefaultFalseProbability
	}
	return &Local{f: bb.NewWithEstimates(n, p)}
}

func (l *Local) TryInit(_ context.Context, n uint, p float64) (bool, error) {
	if err := validate(n, p); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		return false, nil
	}
	l.f = bb.NewWithEstimates(n, p)
	return true, nil
}

func (l *Local) Add(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return ErrNotInitialized
	}
	l.f.AddString(key)
	return nil
}

func (l *Local) Contains(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.f == nil {
		return false, ErrNotInitialized
	}
	return l.f.TestString(key), nil
}

// Params returns the bit count and hash count, or zeros when uninitialized.
func (l *Local) Params() (m, k uint) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.f == nil {
		return 0, 0
	}
	return l.f.Cap(), l.f.K()
}
