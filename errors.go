package omegacache

import (
	"errors"
	"fmt"
)

var (
	ErrNoLocker  = errors.New("omegacache: SafeGet needs a Locker")
	ErrNilLoader = errors.New("omegacache: nil loader")

	// ErrBloomAdd wraps a Bloom filter failure after the value was stored.
	ErrBloomAdd = errors.New("omegacache: value stored but bloom add failed")
)

// CodecError reports a value that could not be encoded or decoded.
// It is never retried.
type CodecError struct {
	Op  string // "encode" or "decode"
	Key string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("omegacache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }
