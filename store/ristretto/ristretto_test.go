package ristretto

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("get = %q,%v,%v; want v,true,nil", b, ok, err)
	}
	removed, _ := s.Delete(ctx, "k")
	if !removed {
		t.Fatalf("expected delete to report existing key")
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	b, _, _ := s.Get(ctx, "k")
	if string(b) != "abc" {
		t.Fatalf("stored value mutated: %q", b)
	}
}

func TestTTLExpires(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_ = s.Set(ctx, "k", []byte("v"), 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCountAndDeleteMany(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)
	if n, _ := s.CountExisting(ctx, []string{"a", "b", "c"}); n != 2 {
		t.Fatalf("count = %d; want 2", n)
	}
	if n, _ := s.DeleteMany(ctx, []string{"a", "c"}); n != 1 {
		t.Fatalf("deleteMany = %d; want 1", n)
	}
	if ok, _ := s.Exists(ctx, "b"); !ok {
		t.Fatalf("expected b to remain")
	}
}

func TestPutIfAllAbsent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	ok, err := s.PutIfAllAbsent(ctx, []string{"A", "B"}, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first put = %v,%v; want true,nil", ok, err)
	}
	ok, _ = s.PutIfAllAbsent(ctx, []string{"B", "C"}, time.Minute)
	if ok {
		t.Fatalf("expected false when B already exists")
	}
	if exists, _ := s.Exists(ctx, "C"); exists {
		t.Fatalf("C must not be written when the batch fails")
	}
}

func newTinyStore(t *testing.T, maxCost int64) *Store {
	t.Helper()
	s, err := New(Config{NumCounters: 100, MaxCost: maxCost, BufferItems: 64})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSetReportsRejectedWrite(t *testing.T) {
	ctx := context.Background()
	s := newTinyStore(t, 4)

	if err := s.Set(ctx, "k", []byte("too large"), 0); !errors.Is(err, ErrNotAdmitted) {
		t.Fatalf("set err = %v; want ErrNotAdmitted", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("rejected write must not be readable")
	}
}

// Entries the policy refuses must not let two callers win the same keys.
func TestPutIfAllAbsentRejectedWriteHasNoWinner(t *testing.T) {
	ctx := context.Background()
	s := newTinyStore(t, 4)

	for i := 0; i < 2; i++ {
		ok, err := s.PutIfAllAbsent(ctx, []string{"A", "B"}, time.Minute)
		if ok || !errors.Is(err, ErrNotAdmitted) {
			t.Fatalf("attempt %d = %v,%v; want false,ErrNotAdmitted", i, ok, err)
		}
	}
	if n, _ := s.CountExisting(ctx, []string{"A", "B"}); n != 0 {
		t.Fatalf("existing = %d; want 0", n)
	}
}

func TestPutIfAllAbsentRollsBackPartialBatch(t *testing.T) {
	ctx := context.Background()
	s := newTinyStore(t, 512)

	big := strings.Repeat("k", 4096)
	ok, err := s.PutIfAllAbsent(ctx, []string{"A", big}, time.Minute)
	if ok || !errors.Is(err, ErrNotAdmitted) {
		t.Fatalf("put = %v,%v; want false,ErrNotAdmitted", ok, err)
	}
	if exists, _ := s.Exists(ctx, "A"); exists {
		t.Fatalf("A must be rolled back when a later key is rejected")
	}
}

func TestEmptyValueRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Set(ctx, "empty", []byte{}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := s.Get(ctx, "empty")
	if err != nil || !ok || b == nil || len(b) != 0 {
		t.Fatalf("get = %q,%v,%v; want empty,true,nil", b, ok, err)
	}
	if ok, _ := s.Exists(ctx, "empty"); !ok {
		t.Fatalf("expected empty entry to remain after get")
	}
}
