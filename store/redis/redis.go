// Package redis implements store.Store on go-redis v9.
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lcsk42/omegacache/keys"
	"github.com/lcsk42/omegacache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	keys        *keys.Serializer
	script      *goredis.Script // nil => PutIfAllAbsent unavailable
	closeClient bool
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient
	// Keys maps logical keys to physical keys. nil => keys are used as-is.
	Keys *keys.Serializer
	// Script is the prepared put-if-all-absent script. nil => NewPutIfAllAbsentScript().
	Script *goredis.Script
	// DisableScript leaves the store without an atomic multi-key operation;
	// PutIfAllAbsent then returns store.ErrScriptUnavailable.
	DisableScript bool
	CloseClient   bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	s := &Redis{rdb: cfg.Client, keys: cfg.Keys, closeClient: cfg.CloseClient}
	if s.keys == nil {
		s.keys = &keys.Serializer{}
	}
	if !cfg.DisableScript {
		s.script = cfg.Script
		if s.script == nil {
			s.script = NewPutIfAllAbsentScript()
		}
	}
	return s, nil
}

// Client exposes the underlying redis client.
func (p *Redis) Client() goredis.UniversalClient { return p.rdb }

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	k, err := p.keys.Serialize(key)
	if err != nil {
		return nil, false, err
	}
	b, err := p.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	k, err := p.keys.Serialize(key)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per store contract
	}
	return p.rdb.Set(ctx, k, value, ttl).Err()
}

func (p *Redis) Delete(ctx context.Context, key string) (bool, error) {
	k, err := p.keys.Serialize(key)
	if err != nil {
		return false, err
	}
	n, err := p.rdb.Del(ctx, k).Result()
	return n > 0, err
}

func (p *Redis) DeleteMany(ctx context.Context, ks []string) (int64, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	phys, err := p.keys.SerializeAll(ks)
	if err != nil {
		return 0, err
	}
	return p.rdb.Del(ctx, phys...).Result()
}

func (p *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := p.CountExisting(ctx, []string{key})
	return n > 0, err
}

func (p *Redis) CountExisting(ctx context.Context, ks []string) (int64, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	phys, err := p.keys.SerializeAll(ks)
	if err != nil {
		return 0, err
	}
	return p.rdb.Exists(ctx, phys...).Result()
}

// pxArg formats ttl for PX, rounding a positive sub-millisecond TTL up to 1ms
// the way go-redis does for SET.
func pxArg(ttl time.Duration) string {
	if ttl > 0 && ttl < time.Millisecond {
		return "1"
	}
	return strconv.FormatInt(ttl.Milliseconds(), 10)
}

// PutIfAllAbsent runs the prepared script over the physical keys with the TTL
// in milliseconds.
func (p *Redis) PutIfAllAbsent(ctx context.Context, ks []string, ttl time.Duration) (bool, error) {
	if p.script == nil {
		return false, store.ErrScriptUnavailable
	}
	if len(ks) == 0 {
		return false, nil
	}
	phys, err := p.keys.SerializeAll(ks)
	if err != nil {
		return false, err
	}
	n, err := p.script.Run(ctx, p.rdb, phys, pxArg(ttl)).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
