package lrucache

import (
	"time"
)

func (c *cache[K, V]) sweepLoop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepOnce()
		case <-c.stopCh:
			return
		}
	}
}

// sweepOnce runs one pass and keeps any panic inside it.
func (c *cache[K, V]) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			c.recovered(&SweepPanicError{Value: r})
		}
	}()

	start := time.Now()
	removed := c.sweep(c.now())
	took := time.Since(start)

	if removed > 0 {
		c.log.Debug("sweep removed expired entries", Fields{"removed": removed, "took": took})
	}
	c.hooks.SweepDone(removed, took)
}

// sweep drops every entry expired at now and returns how many it removed.
//
// Candidates are collected under the read lock so callers are only blocked
// for the removal phase. Each candidate is re-checked under the write lock
// because it may have been overwritten in between.
func (c *cache[K, V]) sweep(now time.Time) int {
	var candidates []K

	c.mu.RLock()
	for k, e := range c.items {
		if e.expired(now) {
			candidates = append(candidates, k)
		}
	}
	c.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	victims := make([]eviction[K, V], 0, len(candidates))
	c.mu.Lock()
	for _, k := range candidates {
		e, ok := c.items[k]
		if !ok || !e.expired(now) {
			continue
		}
		c.order.Remove(e.slot)
		delete(c.items, k)
		victims = append(victims, eviction[K, V]{key: k, value: e.value, reason: EvictExpired})
	}
	c.mu.Unlock()

	for _, v := range victims {
		c.evicted(v)
	}
	return len(victims)
}

// evicted accounts for a removed entry and runs the hooks and OnEvict. A
// panic in either is recovered and reported so one bad entry does not stop
// the rest.
func (c *cache[K, V]) evicted(ev eviction[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			c.recovered(&SweepPanicError{Key: ev.key, Value: r})
		}
	}()

	if ev.reason == EvictCapacity {
		c.stats.evictions.Add(1)
	} else {
		c.stats.expirations.Add(1)
	}
	c.hooks.Evicted(ev.reason.String())

	if c.onEvict != nil {
		c.onEvict(ev.key, ev.value, ev.reason)
	}
}

// recovered reports a recovered panic. It runs inside deferred recovers, so
// a panicking logger or hook is swallowed here.
func (c *cache[K, V]) recovered(err *SweepPanicError) {
	swallow(func() { c.log.Error("recovered panic", Fields{"err": err}) })
	swallow(func() { c.hooks.SweepPanic(err) })
}

func swallow(f func()) {
	defer func() { _ = recover() }()
	f()
}
