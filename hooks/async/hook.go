// Package asynchook moves lrucache hook calls off the caller's goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    EvictedEvery:  100, // sample: ~every 100th eviction
//	    SelfHealEvery: 10,
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := lrucache.New[string, User](lrucache.Options[string, User]{
//	    Capacity: 10_000,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/lrucache"
)

type Hooks struct {
	inner   lrucache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards sends against close
	closed  bool
	dropped atomic.Uint64
}

var _ lrucache.Hooks = (*Hooks)(nil)

func New(inner lrucache.Hooks, workers, qlen int) *Hooks {
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
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Evicted(r string)           { h.try(func() { h.inner.Evicted(r) }) }
func (h *Hooks) SweepPanic(err error)       { h.try(func() { h.inner.SweepPanic(err) }) }
func (h *Hooks) KeyRejected(op string)      { h.try(func() { h.inner.KeyRejected(op) }) }
func (h *Hooks) TierSelfHeal(k, r string)   { h.try(func() { h.inner.TierSelfHeal(k, r) }) }
func (h *Hooks) SweepDone(n int, d time.Duration) {
	h.try(func() { h.inner.SweepDone(n, d) })
}
func (h *Hooks) TierDemoteFailed(k string, err error) {
	h.try(func() { h.inner.TierDemoteFailed(k, err) })
}
