package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcsk42/omegacache/keys"
	"github.com/lcsk42/omegacache/store"
)

func setupStore(t *testing.T, mutate func(*Config)) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cfg := Config{Client: rdb, CloseClient: true}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mr
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "user:42", []byte(`{"id":42}`), 30*time.Second))
	b, ok, err := s.Get(ctx, "user:42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":42}`, string(b))
	assert.Equal(t, 30*time.Second, mr.TTL("user:42"))

	removed, err := s.Delete(ctx, "user:42")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, "user:42")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetWithoutTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, time.Duration(0), mr.TTL("k"))
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t, nil)

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Minute))

	ok, err := s.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.CountExisting(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountExisting(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.DeleteMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPrefixedKeys(t *testing.T) {
	ctx := context.Background()
	ser, err := keys.NewSerializer("omega:", "UTF-8")
	require.NoError(t, err)
	s, mr := setupStore(t, func(c *Config) { c.Keys = ser })

	require.NoError(t, s.Set(ctx, "user:1", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("omega:user:1"))
	assert.False(t, mr.Exists("user:1"))

	ok, err := s.PutIfAllAbsent(ctx, []string{"token:1"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("omega:token:1"))
}

func TestPutIfAllAbsent(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	ok, err := s.PutIfAllAbsent(ctx, []string{"A", "B"}, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("A"))
	assert.True(t, mr.Exists("B"))
	assert.Equal(t, 30*time.Second, mr.TTL("A"))

	// One key already present: nothing written.
	ok, err = s.PutIfAllAbsent(ctx, []string{"B", "C"}, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("C"))
}

func TestPutIfAllAbsentSubMillisecondTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	ok, err := s.PutIfAllAbsent(ctx, []string{"A"}, 500*time.Microsecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Millisecond, mr.TTL("A"), "must expire, not persist")
}

func TestPutIfAllAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, nil)

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.PutIfAllAbsent(ctx, []string{"A", "B"}, time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, mr.Exists("A"))
	assert.True(t, mr.Exists("B"))
}

func TestPutIfAllAbsentScriptDisabled(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, func(c *Config) { c.DisableScript = true })

	ok, err := s.PutIfAllAbsent(ctx, []string{"A"}, time.Minute)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, store.ErrScriptUnavailable))
	assert.False(t, mr.Exists("A"))
}

func TestCloseOwnership(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	s, err := New(Config{Client: rdb})
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	// Client is still usable: the store did not own it.
	require.NoError(t, rdb.Ping(context.Background()).Err())
	require.NoError(t, rdb.Close())
}
