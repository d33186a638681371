// Package config loads omegacache settings from a YAML file, a .env file and
// OMEGA_CACHE_* environment variables, in that order of precedence (later wins).
//
// Environment variables:
//   - OMEGA_CACHE_PREFIX, OMEGA_CACHE_PREFIX_CHARSET
//   - OMEGA_CACHE_VALUE_TIMEOUT, OMEGA_CACHE_VALUE_TIME_UNIT
//   - OMEGA_CACHE_BLOOM_ENABLED, OMEGA_CACHE_BLOOM_NAME,
//     OMEGA_CACHE_BLOOM_EXPECTED_INSERTIONS, OMEGA_CACHE_BLOOM_FALSE_PROBABILITY
//   - OMEGA_CACHE_REDIS_ADDRS (comma separated), OMEGA_CACHE_REDIS_USERNAME,
//     OMEGA_CACHE_REDIS_PASSWORD, OMEGA_CACHE_REDIS_DB, OMEGA_CACHE_REDIS_POOL_SIZE
//   - OMEGA_CACHE_LOCK_EXPIRY, OMEGA_CACHE_LOCK_RETRY_DELAY (Go durations)
//   - OMEGA_CACHE_LOG_LEVEL
//
// Example:
//
//	cfg, err := config.Load("omegacache.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ttl := cfg.ValueTTL()
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lcsk42/omegacache/bloom"
	"github.com/lcsk42/omegacache/keys"
)

// Config is the full configuration tree.
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Bloom BloomConfig `yaml:"bloom_filter"`
	Redis RedisConfig `yaml:"redis"`
	Lock  LockConfig  `yaml:"lock"`
	Log   LogConfig   `yaml:"log"`
}

type CacheConfig struct {
	Prefix        string `yaml:"prefix"`
	PrefixCharset string `yaml:"prefix_charset"`
	// ValueTimeout is counted in ValueTimeUnit.
	ValueTimeout  int64  `yaml:"value_timeout"`
	ValueTimeUnit string `yaml:"value_time_unit"`
}

type BloomConfig struct {
	Enabled            bool    `yaml:"enabled"`
	Name               string  `yaml:"name"`
	ExpectedInsertions uint    `yaml:"expected_insertions"`
	FalseProbability   float64 `yaml:"false_probability"`
}

type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	PoolSize int      `yaml:"pool_size"`
}

type LockConfig struct {
	Expiry     time.Duration `yaml:"expiry"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			PrefixCharset: keys.DefaultCharset,
			ValueTimeout:  30000,
			ValueTimeUnit: "milliseconds",
		},
		Bloom: BloomConfig{
			Name:               bloom.DefaultName,
			ExpectedInsertions: bloom.DefaultExpectedInsertions,
			FalseProbability:   bloom.DefaultFalseProbability,
		},
		Redis: RedisConfig{
			Addrs:    []string{"localhost:6379"},
			PoolSize: 10,
		},
		Lock: LockConfig{
			Expiry:     30 * time.Second,
			RetryDelay: 50 * time.Millisecond,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), ./.env if present, and the environment; then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file onto c. Keys missing from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

var units = map[string]time.Duration{
	"nanoseconds":  time.Nanosecond,
	"microseconds": time.Microsecond,
	"milliseconds": time.Millisecond,
	"seconds":      time.Second,
	"minutes":      time.Minute,
	"hours":        time.Hour,
	"days":         24 * time.Hour,
}

func unit(name string) (time.Duration, bool) {
	u, ok := units[strings.ToLower(strings.TrimSpace(name))]
	return u, ok
}

// ValueTTL is ValueTimeout expressed in ValueTimeUnit. Call after Validate.
func (c *Config) ValueTTL() time.Duration {
	u, ok := unit(c.Cache.ValueTimeUnit)
	if !ok {
		u = time.Millisecond
	}
	return time.Duration(c.Cache.ValueTimeout) * u
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := unit(c.Cache.ValueTimeUnit); !ok {
		errs = append(errs, fmt.Errorf("cache.value_time_unit: unknown unit %q", c.Cache.ValueTimeUnit))
	}
	if c.Cache.ValueTimeout <= 0 {
		errs = append(errs, fmt.Errorf("cache.value_timeout: must be > 0, got %d", c.Cache.ValueTimeout))
	} else if ttl := c.ValueTTL(); ttl < time.Millisecond {
		errs = append(errs, fmt.Errorf("cache.value_timeout: %v is below Redis's 1ms resolution", ttl))
	}
	if _, err := keys.NewSerializer(c.Cache.Prefix, c.Cache.PrefixCharset); err != nil {
		errs = append(errs, fmt.Errorf("cache.prefix_charset: %w", err))
	}
	if c.Bloom.Enabled {
		if c.Bloom.Name == "" {
			errs = append(errs, errors.New("bloom_filter.name: required when enabled"))
		}
		if c.Bloom.ExpectedInsertions == 0 {
			errs = append(errs, errors.New("bloom_filter.expected_insertions: must be > 0"))
		}
		if p := c.Bloom.FalseProbability; !(p > 0 && p < 1) {
			errs = append(errs, fmt.Errorf("bloom_filter.false_probability: must be in (0,1), got %v", p))
		}
	}
	if len(c.Redis.Addrs) == 0 {
		errs = append(errs, errors.New("redis.addrs: at least one address is required"))
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		errs = append(errs, fmt.Errorf("redis.db: must be 0-15, got %d", c.Redis.DB))
	}
	if c.Lock.Expiry < 0 || c.Lock.RetryDelay < 0 {
		errs = append(errs, errors.New("lock: durations must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
