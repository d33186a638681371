package bloom

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	bb "github.com/bits-and-blooms/bloom/v3"
	goredis "github.com/redis/go-redis/v9"
)

// maxBits is the largest bitmap a redis string can hold.
const maxBits = 1 << 32

const tryInitLua = `
if redis.call('EXISTS', KEYS[1]) == 1 then
    return 0
end
redis.call('HSET', KEYS[1], 'size', ARGV[1], 'hashIterations', ARGV[2],
    'expectedInsertions', ARGV[3], 'falseProbability', ARGV[4])
return 1
`

// Redis is a filter shared by every process pointing at the same name. Bits
// live in a string at Name(); parameters in the hash "{name}:config". Both
// keys hash to the same cluster slot.
type Redis struct {
	rdb    goredis.UniversalClient
	name   string
	config string
	init   *goredis.Script

	mu   sync.RWMutex
	m, k uint64 // loaded lazily; immutable once set
}

var (
	_ Filter      = (*Redis)(nil)
	_ Initializer = (*Redis)(nil)
)

func NewRedis(rdb goredis.UniversalClient, name string) (*Redis, error) {
	if rdb == nil {
		return nil, errors.New("bloom: nil redis client")
	}
	if name == "" {
		name = DefaultName
	}
	return &Redis{
		rdb:    rdb,
		name:   name,
		config: "{" + name + "}:config",
		init:   goredis.NewScript(tryInitLua),
	}, nil
}

func (r *Redis) Name() string { return r.name }

func (r *Redis) TryInit(ctx context.Context, n uint, p float64) (bool, error) {
	if err := validate(n, p); err != nil {
		return false, err
	}
	m, k := bb.EstimateParameters(n, p)
	if uint64(m) > maxBits {
		return false, fmt.Errorf("bloom: %d bits exceeds redis bitmap limit", m)
	}
	res, err := r.init.Run(ctx, r.rdb, []string{r.config},
		strconv.FormatUint(uint64(m), 10),
		strconv.FormatUint(uint64(k), 10),
		strconv.FormatUint(uint64(n), 10),
		strconv.FormatFloat(p, 'g', -1, 64),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("bloom: init %s: %w", r.name, err)
	}
	return res == 1, nil
}

// Params returns the bit count and hash count stored in redis.
func (r *Redis) Params(ctx context.Context) (m, k uint64, err error) {
	r.mu.RLock()
	m, k = r.m, r.k
	r.mu.RUnlock()
	if m != 0 {
		return m, k, nil
	}

	vals, err := r.rdb.HMGet(ctx, r.config, "size", "hashIterations").Result()
	if err != nil {
		return 0, 0, fmt.Errorf("bloom: load config %s: %w", r.name, err)
	}
	if vals[0] == nil || vals[1] == nil {
		return 0, 0, ErrNotInitialized
	}
	if m, err = parseUint(vals[0]); err != nil {
		return 0, 0, err
	}
	if k, err = parseUint(vals[1]); err != nil {
		return 0, 0, err
	}
	if m == 0 || k == 0 {
		return 0, 0, ErrNotInitialized
	}

	r.mu.Lock()
	r.m, r.k = m, k
	r.mu.Unlock()
	return m, k, nil
}

func parseUint(v any) (uint64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("bloom: unexpected config value %T", v)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bloom: bad config value %q: %w", s, err)
	}
	return n, nil
}

func (r *Redis) offsets(ctx context.Context, key string) ([]int64, error) {
	m, k, err := r.Params(ctx)
	if err != nil {
		return nil, err
	}
	locs := bb.Locations([]byte(key), uint(k))
	out := make([]int64, len(locs))
	for i, l := range locs {
		out[i] = int64(l % m)
	}
	return out, nil
}

func (r *Redis) Add(ctx context.Context, key string) error {
	offs, err := r.offsets(ctx, key)
	if err != nil {
		return err
	}
	_, err = r.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, o := range offs {
			p.SetBit(ctx, r.name, o, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bloom: add to %s: %w", r.name, err)
	}
	return nil
}

func (r *Redis) Contains(ctx context.Context, key string) (bool, error) {
	offs, err := r.offsets(ctx, key)
	if err != nil {
		return false, err
	}
	cmds := make([]*goredis.IntCmd, len(offs))
	_, err = r.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, o := range offs {
			cmds[i] = p.GetBit(ctx, r.name, o)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("bloom: test %s: %w", r.name, err)
	}
	for _, c := range cmds {
		if c.Val() == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Drop deletes the bitmap and its parameters. The next TryInit starts over.
func (r *Redis) Drop(ctx context.Context) error {
	r.mu.Lock()
	r.m, r.k = 0, 0
	r.mu.Unlock()
	return r.rdb.Del(ctx, r.name, r.config).Err()
}
