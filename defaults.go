package omegacache

import "time"

// LockPrefix is prepended to the cache key to name the lock SafeGet takes.
const LockPrefix = "safe_get_distributed_lock_get:"

// DefaultTTL applies when neither Options.DefaultTTL nor a per-call TTL is set.
const DefaultTTL = 30 * time.Second

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
