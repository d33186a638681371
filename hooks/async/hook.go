// Package asynchook moves hook calls off the cache's hot path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    RejectEvery: 100, // sample logs: ~every 100th filter rejection
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := omegacache.New[User](omegacache.Options[User]{
//	    Store:  store,
//	    Codec:  codec.JSON[User]{},
//	    Locker: locker,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcsk42/omegacache"
)

type Hooks struct {
	inner   omegacache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ omegacache.Hooks = (*Hooks)(nil)

func New(inner omegacache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) FilterRejected(k, by string)     { h.try(func() { h.inner.FilterRejected(k, by) }) }
func (h *Hooks) LoadMiss(k string)               { h.try(func() { h.inner.LoadMiss(k) }) }
func (h *Hooks) ScriptUnavailable(n int)         { h.try(func() { h.inner.ScriptUnavailable(n) }) }
func (h *Hooks) EncodeSkipped(k string)          { h.try(func() { h.inner.EncodeSkipped(k) }) }
func (h *Hooks) UnlockError(k string, err error) { h.try(func() { h.inner.UnlockError(k, err) }) }
func (h *Hooks) Loaded(k string, took time.Duration) {
	h.try(func() { h.inner.Loaded(k, took) })
}
