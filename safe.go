package omegacache

import (
	"context"
	"fmt"
	"time"

	"github.com/lcsk42/omegacache/bloom"
	"github.com/lcsk42/omegacache/lock"
)

// present reports a hit that counts: stored and not blank.
func present[V any](v V, ok bool) bool {
	return ok && !IsBlank(v)
}

func (c *cache[V]) GetOrLoad(ctx context.Context, key string, loader Loader[V], ttl time.Duration) (V, bool, error) {
	if loader == nil {
		var zero V
		return zero, false, ErrNilLoader
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if present(v, ok) {
		return v, true, nil
	}
	return c.loadAndSet(ctx, key, loader, ttl, nil, nil)
}

func (c *cache[V]) SafeGet(ctx context.Context, key string, loader Loader[V], opts LoadOptions) (V, bool, error) {
	var zero V
	if loader == nil {
		return zero, false, ErrNilLoader
	}
	if !c.enabled {
		v, err := loader(ctx)
		if err != nil {
			return zero, false, err
		}
		return v, !IsBlank(v), nil
	}
	if c.locker == nil {
		return zero, false, ErrNoLocker
	}

	// fast path
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if present(v, ok) {
		return v, true, nil
	}

	if opts.Filter != nil && opts.Filter(key) {
		c.hooks.FilterRejected(key, "filter")
		return v, false, nil
	}
	if opts.Bloom != nil {
		maybe, err := opts.Bloom.Contains(ctx, key)
		if err != nil {
			return zero, false, err
		}
		if !maybe {
			c.hooks.FilterRejected(key, "bloom")
			return v, false, nil
		}
	}

	lk := c.locker.NewLock(LockPrefix + key)
	if err := lk.Lock(ctx); err != nil {
		return zero, false, err
	}
	defer c.unlock(ctx, key, lk)

	// another holder may have loaded it while we waited
	v, ok, err = c.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if present(v, ok) {
		return v, true, nil
	}
	return c.loadAndSet(ctx, key, loader, opts.TTL, opts.Bloom, opts.OnAbsent)
}

// unlock runs even when ctx is already cancelled.
func (c *cache[V]) unlock(ctx context.Context, key string, lk lock.Lock) {
	if err := lk.Unlock(context.WithoutCancel(ctx)); err != nil {
		c.hooks.UnlockError(key, err)
		c.log.Warn("unlock failed", Fields{"key": key, "err": err})
	}
}

func (c *cache[V]) loadAndSet(ctx context.Context, key string, loader Loader[V], ttl time.Duration,
	bf bloom.Filter, onAbsent AbsentFunc) (V, bool, error) {
	start := time.Now()
	v, err := loader(ctx)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if IsBlank(v) {
		c.hooks.LoadMiss(key)
		c.log.Debug("loader found nothing", Fields{"key": key})
		if onAbsent != nil {
			onAbsent(key)
		}
		return v, false, nil
	}
	wrote, err := c.put(ctx, key, v, ttl)
	if err != nil {
		return v, false, err
	}
	if wrote && bf != nil {
		if err := bf.Add(ctx, key); err != nil {
			return v, true, fmt.Errorf("%w %q: %w", ErrBloomAdd, key, err)
		}
	}
	c.hooks.Loaded(key, time.Since(start))
	return v, true, nil
}

func (c *cache[V]) SafePut(ctx context.Context, key string, value V, ttl time.Duration, bf bloom.Filter) error {
	if !c.enabled {
		return nil
	}
	if _, err := c.put(ctx, key, value, ttl); err != nil {
		return err
	}
	if bf == nil {
		return nil
	}
	if err := bf.Add(ctx, key); err != nil {
		return fmt.Errorf("%w %q: %w", ErrBloomAdd, key, err)
	}
	return nil
}
