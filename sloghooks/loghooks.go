// Package sloghooks reports cache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lcsk42/omegacache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	RejectEvery uint64
	MissEvery   uint64
	LoadedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	rejectCtr atomic.Uint64
	missCtr   atomic.Uint64
	loadedCtr atomic.Uint64
}

var _ omegacache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) FilterRejected(key, by string) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Debug("omegacache.filter_rejected",
		"key", h.redact(key),
		"by", by)
}

func (h *Hooks) LoadMiss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("omegacache.load_miss", "key", h.redact(key))
}

func (h *Hooks) Loaded(key string, took time.Duration) {
	if h.l == nil || !sample(h.opts.LoadedEvery, &h.loadedCtr) {
		return
	}
	h.l.Debug("omegacache.loaded",
		"key", h.redact(key),
		"took", took)
}

func (h *Hooks) ScriptUnavailable(keys int) {
	if h.l == nil {
		return
	}
	h.l.Warn("omegacache.script_unavailable",
		"keys", keys,
		"msg", "put-if-all-absent reported false without touching the store")
}

func (h *Hooks) UnlockError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("omegacache.unlock_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) EncodeSkipped(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("omegacache.encode_skipped", "key", h.redact(key))
}
