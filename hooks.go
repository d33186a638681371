package omegacache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A safe read was answered without loading.
	// by ∈ {"filter", "bloom"}
	FilterRejected(key, by string)

	// The loader returned a blank value; nothing was cached.
	LoadMiss(key string)

	// The loader returned a value that was written through.
	Loaded(key string, took time.Duration)

	// PutIfAllAbsent found no atomic script and reported false.
	ScriptUnavailable(keys int)

	// Releasing the per-key lock failed. The read itself succeeded.
	UnlockError(key string, err error)

	// The codec produced nothing to store; the write was skipped.
	EncodeSkipped(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) FilterRejected(string, string) {}
func (NopHooks) LoadMiss(string)               {}
func (NopHooks) Loaded(string, time.Duration)  {}
func (NopHooks) ScriptUnavailable(int)         {}
func (NopHooks) UnlockError(string, error)     {}
func (NopHooks) EncodeSkipped(string)          {}
