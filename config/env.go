package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "OMEGA_CACHE_"

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays OMEGA_CACHE_* variables onto c. A nil lookup reads the
// process environment. Empty values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	e := envReader{lookup: lookup}

	e.str("PREFIX", &c.Cache.Prefix)
	e.str("PREFIX_CHARSET", &c.Cache.PrefixCharset)
	e.int64("VALUE_TIMEOUT", &c.Cache.ValueTimeout)
	e.str("VALUE_TIME_UNIT", &c.Cache.ValueTimeUnit)

	e.bool("BLOOM_ENABLED", &c.Bloom.Enabled)
	e.str("BLOOM_NAME", &c.Bloom.Name)
	e.uint("BLOOM_EXPECTED_INSERTIONS", &c.Bloom.ExpectedInsertions)
	e.float("BLOOM_FALSE_PROBABILITY", &c.Bloom.FalseProbability)

	if v, ok := e.get("REDIS_ADDRS"); ok {
		c.Redis.Addrs = splitList(v)
	}
	e.str("REDIS_USERNAME", &c.Redis.Username)
	e.str("REDIS_PASSWORD", &c.Redis.Password)
	e.int("REDIS_DB", &c.Redis.DB)
	e.int("REDIS_POOL_SIZE", &c.Redis.PoolSize)

	e.duration("LOCK_EXPIRY", &c.Lock.Expiry)
	e.duration("LOCK_RETRY_DELAY", &c.Lock.RetryDelay)

	e.str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(e.errs...)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(envPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(name, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("config: %s%s=%q: %w", envPrefix, name, v, err))
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) bool(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) int(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(name string, dst *int64) {
	if v, ok := e.get(name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) uint(name string, dst *uint) {
	if v, ok := e.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = uint(n)
	}
}

func (e *envReader) float(name string, dst *float64) {
	if v, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = d
	}
}
