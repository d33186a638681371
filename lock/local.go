package lock

import (
	"context"
	"sync"
)

// Local is an in-process Locker. Locks with the same name are exclusive
// within one Local only. Idle names are dropped from the table.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{} // capacity 1; a token in the channel means "held"
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

func (l *Local) NewLock(name string) Lock {
	return &localLock{owner: l, name: name}
}

func (l *Local) acquire(name string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[name]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[name] = s
	}
	s.refs++
	return s
}

func (l *Local) release(name string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, name)
	}
}

// size reports the number of names with waiters or holders.
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

type localLock struct {
	owner *Local
	name  string

	mu   sync.Mutex
	held *slot
}

func (k *localLock) Name() string { return k.name }

func (k *localLock) Lock(ctx context.Context) error {
	s := k.owner.acquire(k.name)
	select {
	case s.ch <- struct{}{}:
		k.mu.Lock()
		k.held = s
		k.mu.Unlock()
		return nil
	case <-ctx.Done():
		k.owner.release(k.name, s)
		return ctx.Err()
	}
}

func (k *localLock) Unlock(context.Context) error {
	k.mu.Lock()
	s := k.held
	k.held = nil
	k.mu.Unlock()
	if s == nil {
		return ErrNotHeld
	}
	<-s.ch
	k.owner.release(k.name, s)
	return nil
}
