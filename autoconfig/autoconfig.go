// Package autoconfig assembles a ready-to-use cache from a config.Config:
// the redis client, key serializer, redis store with its prepared script,
// a redsync locker and, when enabled, the shared Bloom filter.
package autoconfig

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lcsk42/omegacache"
	"github.com/lcsk42/omegacache/bloom"
	"github.com/lcsk42/omegacache/codec"
	"github.com/lcsk42/omegacache/config"
	"github.com/lcsk42/omegacache/keys"
	rlock "github.com/lcsk42/omegacache/lock/redsync"
	rstore "github.com/lcsk42/omegacache/store/redis"
)

// Components are shared by every typed cache built from one configuration.
type Components struct {
	Config *config.Config
	Client goredis.UniversalClient
	Keys   *keys.Serializer
	Store  *rstore.Redis
	Locker *rlock.Locker
	// Bloom is nil when the filter is disabled.
	Bloom *bloom.Redis

	ownsClient bool
}

// NewClient opens a client for the configured address list. One address
// gives a plain client; several give a cluster client.
func NewClient(cfg config.RedisConfig) goredis.UniversalClient {
	return goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// Build wires the components. With rdb nil a client is created from cfg.Redis
// and closed by Components.Close. The Bloom filter, when enabled, is
// initialized here; parameters already stored in redis are kept.
func Build(ctx context.Context, cfg *config.Config, rdb goredis.UniversalClient) (*Components, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Components{Config: cfg, Client: rdb}
	if c.Client == nil {
		c.Client = NewClient(cfg.Redis)
		c.ownsClient = true
	}

	var err error
	if c.Keys, err = keys.NewSerializer(cfg.Cache.Prefix, cfg.Cache.PrefixCharset); err != nil {
		return nil, c.fail(ctx, err)
	}
	c.Store, err = rstore.New(rstore.Config{
		Client: c.Client,
		Keys:   c.Keys,
		Script: rstore.NewPutIfAllAbsentScript(),
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	c.Locker, err = rlock.New(rlock.Options{
		Expiry:     cfg.Lock.Expiry,
		RetryDelay: cfg.Lock.RetryDelay,
	}, c.Client)
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	if cfg.Bloom.Enabled {
		if c.Bloom, err = bloom.NewRedis(c.Client, cfg.Bloom.Name); err != nil {
			return nil, c.fail(ctx, err)
		}
		if _, err := c.Bloom.TryInit(ctx, cfg.Bloom.ExpectedInsertions, cfg.Bloom.FalseProbability); err != nil {
			return nil, c.fail(ctx, err)
		}
	}
	return c, nil
}

func (c *Components) fail(ctx context.Context, err error) error {
	_ = c.Close(ctx)
	return fmt.Errorf("autoconfig: %w", err)
}

// BloomFilter returns the configured filter as a bloom.Filter, or nil when
// disabled. Use it for LoadOptions.Bloom and SafePut.
func (c *Components) BloomFilter() bloom.Filter {
	if c.Bloom == nil {
		return nil
	}
	return c.Bloom
}

// Close releases the client if Build created it.
func (c *Components) Close(context.Context) error {
	if c.ownsClient && c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

type Option[V any] func(*omegacache.Options[V])

func WithLogger[V any](l omegacache.Logger) Option[V] {
	return func(o *omegacache.Options[V]) { o.Logger = l }
}

func WithHooks[V any](h omegacache.Hooks) Option[V] {
	return func(o *omegacache.Options[V]) { o.Hooks = h }
}

// NewCache builds a typed cache over the shared components with the
// configured default TTL. Closing the cache does not close the client.
func NewCache[V any](c *Components, cdc codec.Codec[V], opts ...Option[V]) (omegacache.DistributedCache[V], error) {
	o := omegacache.Options[V]{
		Store:      c.Store,
		Codec:      cdc,
		Locker:     c.Locker,
		DefaultTTL: c.Config.ValueTTL(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return omegacache.New[V](o)
}
