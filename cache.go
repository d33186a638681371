package omegacache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lcsk42/omegacache/codec"
	"github.com/lcsk42/omegacache/lock"
	"github.com/lcsk42/omegacache/store"
)

type cache[V any] struct {
	store      store.Store
	codec      codec.Codec[V]
	locker     lock.Locker
	log        Logger
	hooks      Hooks
	enabled    bool
	defaultTTL time.Duration
}

var _ DistributedCache[string] = (*cache[string])(nil)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("omegacache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("omegacache: codec is required")
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("omegacache: negative default TTL %v", opts.DefaultTTL)
	}

	c := &cache[V]{
		store:   opts.Store,
		codec:   opts.Codec,
		locker:  opts.Locker,
		enabled: !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, DefaultTTL)

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Store() store.Store { return c.store }

func (c *cache[V]) Close(ctx context.Context) error {
	if c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		return zero, false, &CodecError{Op: "decode", Key: key, Err: err}
	}
	return v, true, nil
}

func (c *cache[V]) Put(ctx context.Context, key string, value V) error {
	_, err := c.put(ctx, key, value, 0)
	return err
}

func (c *cache[V]) PutTTL(ctx context.Context, key string, value V, ttl time.Duration) error {
	_, err := c.put(ctx, key, value, ttl)
	return err
}

// put reports whether anything was written. ttl 0 => default TTL.
func (c *cache[V]) put(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	raw, err := c.codec.Encode(value)
	if err != nil {
		return false, &CodecError{Op: "encode", Key: key, Err: err}
	}
	if raw == nil {
		c.hooks.EncodeSkipped(key)
		c.log.Debug("put skipped (nothing to store)", Fields{"key": key})
		return false, nil
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (c *cache[V]) PutIfAllAbsent(ctx context.Context, keys []string) (bool, error) {
	if !c.enabled || len(keys) == 0 {
		return false, nil
	}
	ok, err := c.store.PutIfAllAbsent(ctx, keys, c.defaultTTL)
	if errors.Is(err, store.ErrScriptUnavailable) {
		c.hooks.ScriptUnavailable(len(keys))
		c.log.Warn("put-if-all-absent script unavailable", Fields{"keys": len(keys)})
		return false, nil
	}
	return ok, err
}

func (c *cache[V]) Delete(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	return c.store.Delete(ctx, key)
}

func (c *cache[V]) DeleteMany(ctx context.Context, keys []string) (int64, error) {
	if !c.enabled || len(keys) == 0 {
		return 0, nil
	}
	return c.store.DeleteMany(ctx, keys)
}

func (c *cache[V]) HasKey(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	return c.store.Exists(ctx, key)
}

func (c *cache[V]) CountExistingKeys(ctx context.Context, keys ...string) (int64, error) {
	if !c.enabled || len(keys) == 0 {
		return 0, nil
	}
	return c.store.CountExisting(ctx, keys)
}
