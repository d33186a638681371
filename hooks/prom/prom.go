// Package promhooks exports cache events as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lcsk42/omegacache"
)

type Hooks struct {
	rejected     *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadSeconds  prometheus.Histogram
	scriptMisses prometheus.Counter
	unlockErrors prometheus.Counter
	encodeSkips  prometheus.Counter
}

var _ omegacache.Hooks = (*Hooks)(nil)

// New registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer. namespace prefixes every metric name.
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omegacache_filter_rejections_total",
			Help:      "Safe reads answered without loading.",
		}, []string{"by" /* filter | bloom */}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omegacache_loads_total",
			Help:      "Loader invocations by outcome.",
		}, []string{"result" /* hit | miss */}),
		loadSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "omegacache_load_duration_seconds",
			Help:      "Time spent loading and writing through a value.",
			Buckets:   prometheus.DefBuckets,
		}),
		scriptMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omegacache_script_unavailable_total",
			Help:      "Put-if-all-absent calls without an atomic script.",
		}),
		unlockErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omegacache_unlock_errors_total",
			Help:      "Per-key lock releases that failed.",
		}),
		encodeSkips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omegacache_encode_skipped_total",
			Help:      "Writes skipped because the value encoded to nothing.",
		}),
	}
}

func (h *Hooks) FilterRejected(_, by string) { h.rejected.WithLabelValues(by).Inc() }
func (h *Hooks) LoadMiss(string)             { h.loads.WithLabelValues("miss").Inc() }
func (h *Hooks) ScriptUnavailable(int)       { h.scriptMisses.Inc() }
func (h *Hooks) UnlockError(string, error)   { h.unlockErrors.Inc() }
func (h *Hooks) EncodeSkipped(string)        { h.encodeSkips.Inc() }

func (h *Hooks) Loaded(_ string, took time.Duration) {
	h.loads.WithLabelValues("hit").Inc()
	h.loadSeconds.Observe(took.Seconds())
}
