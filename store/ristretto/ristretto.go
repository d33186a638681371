// Package ristretto implements store.Store in process on dgraph-io/ristretto.
// Useful for tests and single-node deployments; entries are not shared
// between processes.
package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/lcsk42/omegacache/store"
)

// placeholder is the value PutIfAllAbsent writes for each key.
var placeholder = []byte("default")

// ErrNotAdmitted is returned when ristretto drops a write, either because the
// set buffer was full or because the admission policy rejected the entry.
var ErrNotAdmitted = errors.New("ristretto: write not admitted")

type Store struct {
	c *rc.Cache
	// mu serializes writers so the multi-key check-and-set in
	// PutIfAllAbsent cannot interleave with Set or Delete.
	mu sync.Mutex
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // in bytes of key+value
	BufferItems int64
	Metrics     bool
}

// DefaultConfig sizes the cache for roughly 100k entries and 64 MiB.
func DefaultConfig() Config {
	return Config{NumCounters: 1e6, MaxCost: 64 << 20, BufferItems: 64}
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func cost(key string, value []byte) int64 {
	n := int64(len(key) + len(value))
	if n == 0 {
		return 1
	}
	return n
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(key, value, ttl)
}

// set must be called with mu held. Wait makes the write visible to the next Get,
// which confirms the policy admitted it.
func (s *Store) set(key string, value []byte, ttl time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	if !s.c.SetWithTTL(key, cp, cost(key, cp), ttl) {
		return ErrNotAdmitted
	}
	s.c.Wait()
	if _, ok := s.c.Get(key); !ok {
		return ErrNotAdmitted
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.c.Get(key)
	s.c.Del(key)
	return ok, nil
}

func (s *Store) DeleteMany(_ context.Context, keys []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.c.Get(k); ok {
			n++
		}
		s.c.Del(k)
	}
	return n, nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.c.Get(key)
	return ok, nil
}

func (s *Store) CountExisting(_ context.Context, keys []string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := s.c.Get(k); ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) PutIfAllAbsent(_ context.Context, keys []string, ttl time.Duration) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	if ttl < 0 {
		ttl = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, ok := s.c.Get(k); ok {
			return false, nil
		}
	}
	for i, k := range keys {
		if err := s.set(k, placeholder, ttl); err != nil {
			for _, w := range keys[:i] {
				s.c.Del(w)
			}
			return false, err
		}
	}
	return true, nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
