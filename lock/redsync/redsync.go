// Package redsync implements lock.Locker with the Redlock algorithm from
// go-redsync/redsync/v4.
//
// Acquired locks are renewed in the background at a third of their expiry
// until Unlock, so a slow loader cannot outlive its lock. A crashed holder
// stops renewing and the lock frees itself once the expiry passes.
package redsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	rsredis "github.com/go-redsync/redsync/v4/redis"
	goredislib "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lcsk42/omegacache/lock"
)

var ErrNilClient = errors.New("redsync: at least one redis client is required")

const (
	DefaultExpiry     = 30 * time.Second
	DefaultRetryDelay = 50 * time.Millisecond
	renewTimeout      = 5 * time.Second
)

type Options struct {
	// Expiry is the lease written to redis; renewed every Expiry/3. 0 => 30s.
	Expiry time.Duration
	// RetryDelay is the pause between acquisition attempts. 0 => 50ms.
	RetryDelay time.Duration
	// OnLost is called from the renewal goroutine when a held lock could not
	// be extended. Optional.
	OnLost func(name string, err error)
}

type Locker struct {
	rs   *redsync.Redsync
	opts Options
}

var _ lock.Locker = (*Locker)(nil)

// New builds a Locker over one or more independent redis nodes. With several
// nodes a lock is held once a quorum of them agree.
func New(opts Options, clients ...goredis.UniversalClient) (*Locker, error) {
	if len(clients) == 0 {
		return nil, ErrNilClient
	}
	pools := make([]rsredis.Pool, 0, len(clients))
	for _, c := range clients {
		if c == nil {
			return nil, ErrNilClient
		}
		pools = append(pools, goredislib.NewPool(c))
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Locker{rs: redsync.New(pools...), opts: opts}, nil
}

func (l *Locker) NewLock(name string) lock.Lock {
	return &Lock{
		name:   name,
		mutex:  l.rs.NewMutex(name, redsync.WithExpiry(l.opts.Expiry)),
		locker: l,
	}
}

// Lock wraps a redsync.Mutex. One Lock value guards one acquisition at a time.
type Lock struct {
	name   string
	mutex  *redsync.Mutex
	locker *Locker

	mu     sync.Mutex
	cancel context.CancelFunc // stops renewal; nil when not held
	done   chan struct{}
}

func (rl *Lock) Name() string { return rl.name }

// Lock retries until the mutex is acquired or ctx is done. Contention is
// retried; transport errors are returned.
func (rl *Lock) Lock(ctx context.Context) error {
	for {
		err := rl.mutex.TryLockContext(ctx)
		if err == nil {
			rl.startRenewal()
			return nil
		}
		if !contended(err) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("redsync: acquire %q: %w", rl.name, err)
		}

		t := time.NewTimer(rl.locker.opts.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func contended(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	return errors.As(err, &taken)
}

func (rl *Lock) startRenewal() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	rl.mu.Lock()
	rl.cancel = cancel
	rl.done = done
	rl.mu.Unlock()

	go rl.renew(ctx, done)
}

func (rl *Lock) renew(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := rl.locker.opts.Expiry / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ectx, cancel := context.WithTimeout(ctx, renewTimeout)
			ok, err := rl.mutex.ExtendContext(ectx)
			cancel()
			if ctx.Err() != nil {
				return
			}
			if err != nil || !ok {
				if err == nil {
					err = lock.ErrNotHeld
				}
				if f := rl.locker.opts.OnLost; f != nil {
					f(rl.name, err)
				}
				return
			}
		}
	}
}

// Unlock stops renewal and releases the mutex. It returns lock.ErrNotHeld
// when this Lock was not acquired or the lease had already expired.
func (rl *Lock) Unlock(ctx context.Context) error {
	rl.mu.Lock()
	cancel, done := rl.cancel, rl.done
	rl.cancel, rl.done = nil, nil
	rl.mu.Unlock()
	if cancel == nil {
		return lock.ErrNotHeld
	}
	cancel()
	<-done

	ok, err := rl.mutex.UnlockContext(ctx)
	if errors.Is(err, redsync.ErrLockAlreadyExpired) || contended(err) {
		return lock.ErrNotHeld
	}
	if err != nil {
		return fmt.Errorf("redsync: release %q: %w", rl.name, err)
	}
	if !ok {
		return lock.ErrNotHeld
	}
	return nil
}
