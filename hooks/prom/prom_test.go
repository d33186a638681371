package promhooks

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg, "app")

	h.FilterRejected("k", "bloom")
	h.FilterRejected("k", "bloom")
	h.FilterRejected("k", "filter")
	h.LoadMiss("k")
	h.Loaded("k", 20*time.Millisecond)
	h.ScriptUnavailable(2)
	h.UnlockError("k", errors.New("x"))
	h.EncodeSkipped("k")

	if got := testutil.ToFloat64(h.rejected.WithLabelValues("bloom")); got != 2 {
		t.Fatalf("bloom rejections = %v; want 2", got)
	}
	if got := testutil.ToFloat64(h.loads.WithLabelValues("miss")); got != 1 {
		t.Fatalf("load misses = %v; want 1", got)
	}
	if got := testutil.ToFloat64(h.scriptMisses); got != 1 {
		t.Fatalf("script misses = %v; want 1", got)
	}

	expected := `
# HELP app_omegacache_unlock_errors_total Per-key lock releases that failed.
# TYPE app_omegacache_unlock_errors_total counter
app_omegacache_unlock_errors_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_omegacache_unlock_errors_total"); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n := testutil.CollectAndCount(h.loadSeconds); n != 1 {
		t.Fatalf("histogram series = %d; want 1", n)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	New(reg, "")
}
