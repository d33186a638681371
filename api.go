package omegacache

import (
	"context"
	"time"

	"github.com/lcsk42/omegacache/bloom"
	"github.com/lcsk42/omegacache/codec"
	"github.com/lcsk42/omegacache/lock"
	"github.com/lcsk42/omegacache/store"
)

// Loader produces the value for a key on a miss. A blank result means "not found".
type Loader[V any] func(ctx context.Context) (V, error)

// GetFilter returns true for keys that must not reach the loader.
type GetFilter func(key string) bool

// AbsentFunc is called when the loader returned a blank value for key.
type AbsentFunc func(key string)

// LoadOptions are the optional knobs of SafeGet. Every field may be left zero.
type LoadOptions struct {
	TTL      time.Duration // 0 => Options.DefaultTTL
	Bloom    bloom.Filter
	Filter   GetFilter
	OnAbsent AbsentFunc
}

// Cache is the basic typed facade over a store.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Put(ctx context.Context, key string, value V) error
	PutTTL(ctx context.Context, key string, value V, ttl time.Duration) error
	// PutIfAllAbsent sets every key with a placeholder and the default TTL if
	// none of them exist. It reports false when any key existed or the store
	// has no atomic script.
	PutIfAllAbsent(ctx context.Context, keys []string) (bool, error)

	Delete(ctx context.Context, key string) (bool, error)
	DeleteMany(ctx context.Context, keys []string) (int64, error)
	HasKey(ctx context.Context, key string) (bool, error)
	CountExistingKeys(ctx context.Context, keys ...string) (int64, error)

	// Store exposes the underlying store.
	Store() store.Store
}

// DistributedCache adds cache-aside loading on top of Cache.
type DistributedCache[V any] interface {
	Cache[V]

	// GetOrLoad reads key and calls loader on a miss, without locking or
	// filtering. For trusted callers only.
	GetOrLoad(ctx context.Context, key string, loader Loader[V], ttl time.Duration) (V, bool, error)

	// SafeGet reads key, and on a miss loads it under the per-key lock.
	SafeGet(ctx context.Context, key string, loader Loader[V], opts LoadOptions) (V, bool, error)

	// SafePut writes value and then adds key to bf when bf is non-nil.
	SafePut(ctx context.Context, key string, value V, ttl time.Duration, bf bloom.Filter) error
}

// Options configure a cache. Store and Codec are required; Locker is
// required for SafeGet.
type Options[V any] struct {
	Store  store.Store
	Codec  codec.Codec[V]
	Locker lock.Locker

	DefaultTTL time.Duration // 0 => 30s
	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	Disabled   bool          // default false (enabled)
}

func New[V any](opts Options[V]) (DistributedCache[V], error) {
	return newCache[V](opts)
}
