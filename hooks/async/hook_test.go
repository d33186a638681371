package asynchook

import (
	"sync"
	"testing"
	"time"

	"github.com/lcsk42/omegacache"
)

type countHooks struct {
	omegacache.NopHooks
	mu     sync.Mutex
	loaded int
	block  chan struct{}
}

func (c *countHooks) Loaded(string, time.Duration) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.loaded++
	c.mu.Unlock()
}

func TestDeliversAndDrains(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.Loaded("k", time.Millisecond)
	}
	h.Close()

	if inner.loaded != 10 {
		t.Fatalf("delivered %d; want 10", inner.loaded)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped %d; want 0", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event held by the worker, one queued, the rest dropped
	for i := 0; i < 10; i++ {
		h.Loaded("k", 0)
	}
	close(inner.block)
	h.Close()

	if h.Dropped() == 0 {
		t.Fatalf("expected drops with a full queue")
	}
	if got := uint64(inner.loaded) + h.Dropped(); got != 10 {
		t.Fatalf("delivered+dropped = %d; want 10", got)
	}
}

func TestAfterCloseIsDropped(t *testing.T) {
	h := New(omegacache.NopHooks{}, 1, 1)
	h.Close()
	h.LoadMiss("k")
	if h.Dropped() != 1 {
		t.Fatalf("dropped = %d; want 1", h.Dropped())
	}
}
