// Package sloghooks reports lrucache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/lrucache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	EvictedEvery   uint64
	SelfHealEvery  uint64
	SweepDoneEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	evictedCtr   atomic.Uint64
	selfHealCtr  atomic.Uint64
	sweepDoneCtr atomic.Uint64
}

var _ lrucache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) Evicted(reason string) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictedCtr) {
		return
	}
	h.l.Debug("lrucache.evicted", "reason", reason)
}

func (h *Hooks) SweepDone(removed int, took time.Duration) {
	// empty passes are the common case and not worth a line
	if h.l == nil || removed == 0 || !sample(h.opts.SweepDoneEvery, &h.sweepDoneCtr) {
		return
	}
	h.l.Debug("lrucache.sweep_done",
		"removed", removed,
		"took", took)
}

func (h *Hooks) SweepPanic(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("lrucache.sweep_panic", "err", err)
}

func (h *Hooks) KeyRejected(op string) {
	if h.l == nil {
		return
	}
	h.l.Warn("lrucache.key_rejected", "op", op)
}

func (h *Hooks) TierSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("lrucache.tier_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) TierDemoteFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	if err == nil {
		h.l.Info("lrucache.tier_demote_rejected", "key", h.redact(storageKey))
		return
	}
	h.l.Warn("lrucache.tier_demote_failed",
		"key", h.redact(storageKey),
		"err", err)
}
