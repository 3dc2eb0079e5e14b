package lrucache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/unkn0wn-root/lrucache/internal/recency"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero => never expires
	slot      recency.Slot
}

// eviction is a removed entry whose callbacks still have to run. Callbacks are
// deferred until the lock is released.
type eviction[K comparable, V any] struct {
	key    K
	value  V
	reason EvictReason
}

type cache[K comparable, V any] struct {
	// mu guards items and order together; neither is ever updated alone.
	mu       sync.RWMutex
	items    map[K]*entry[V]
	order    *recency.List[K]
	capacity int

	defaultTTL    time.Duration
	sweepInterval time.Duration
	nilable       bool // K can hold nil (pointer, interface, chan)
	dynamic       bool // K is an interface; its dynamic type may not be comparable

	now     func() time.Time
	log     Logger
	hooks   Hooks
	onEvict func(K, V, EvictReason)
	stats   counters

	// background sweep
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

var _ Cache[string, int] = (*cache[string, int])(nil)

func newCache[K comparable, V any](opts Options[K, V]) (*cache[K, V], error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opts.Capacity)
	}

	c := &cache[K, V]{
		items:      make(map[K]*entry[V], opts.Capacity),
		order:      recency.New[K](opts.Capacity),
		capacity:   opts.Capacity,
		defaultTTL: opts.DefaultTTL,
		nilable:    canBeNil[K](),
		dynamic:    reflect.TypeOf((*K)(nil)).Elem().Kind() == reflect.Interface,
		onEvict:    opts.OnEvict,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.sweepInterval = coalesce[time.Duration](opts.SweepInterval, defaultSweep)
	if opts.Now != nil {
		c.now = opts.Now
	} else {
		c.now = time.Now
	}

	if c.sweepInterval > 0 {
		c.stopCh = make(chan struct{})
		c.doneCh = make(chan struct{})
		go c.sweepLoop()
	}
	return c, nil
}

func (c *cache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c.rejectKey("set", key) {
		return
	}
	expiresAt := c.expiresAt(c.now(), ttl)

	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		// overwrite keeps identity; never evicts
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.slot)
		c.mu.Unlock()
		return
	}

	var (
		victim  eviction[K, V]
		evicted bool
	)
	if len(c.items) >= c.capacity {
		if s, ok := c.order.Back(); ok {
			vk := c.order.Remove(s)
			ve := c.items[vk]
			delete(c.items, vk)
			victim = eviction[K, V]{key: vk, value: ve.value, reason: EvictCapacity}
			evicted = true
		}
	}
	c.items[key] = &entry[V]{
		value:     value,
		expiresAt: expiresAt,
		slot:      c.order.PushFront(key),
	}
	c.mu.Unlock()

	if evicted {
		c.evicted(victim)
	}
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.rejectKey("get", key) {
		return zero, false
	}

	c.mu.Lock()
	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		// expired entries stay until the sweep; reads only hide them
		c.mu.Unlock()
		c.stats.misses.Add(1)
		return zero, false
	}
	c.order.MoveToFront(e.slot)
	v := e.value
	c.mu.Unlock()

	c.stats.hits.Add(1)
	return v, true
}

func (c *cache[K, V]) Remove(key K) bool {
	if c.rejectKey("remove", key) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(e.slot)
	delete(c.items, key)
	return true
}

func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	clear(c.items)
	c.order.Reset()
	c.mu.Unlock()
}

func (c *cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Keys()
}

func (c *cache[K, V]) Stats() Stats { return c.stats.snapshot() }

// Close stops the sweep goroutine and waits for it to exit or for ctx to end.
// Safe to call multiple times.
func (c *cache[K, V]) Close(ctx context.Context) error {
	if c.stopCh == nil {
		return nil
	}
	c.closeOnce.Do(func() { close(c.stopCh) })
	select {
	case <-c.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// expiresAt resolves a Set TTL argument into an absolute deadline.
func (c *cache[K, V]) expiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl == DefaultExpiration {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// Expired reports whether a deadline has been reached at now. A zero deadline
// never expires. Every expiry decision in this module goes through it.
func Expired(deadline, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}

func (e *entry[V]) expired(now time.Time) bool { return Expired(e.expiresAt, now) }

// rejectKey refuses nil keys and, for interface key types, keys whose
// dynamic type cannot be hashed (slices, maps, funcs) and would panic in the
// map lookup.
func (c *cache[K, V]) rejectKey(op string, key K) bool {
	if !c.nilable {
		return false
	}
	var msg string
	switch {
	case isNil(key):
		msg = "nil key rejected"
	case c.dynamic && !reflect.ValueOf(key).Comparable():
		msg = "non-comparable key rejected"
	default:
		return false
	}
	c.stats.rejected.Add(1)
	c.log.Debug(msg, Fields{"op": op})
	c.hooks.KeyRejected(op)
	return true
}

func canBeNil[K comparable]() bool {
	switch reflect.TypeOf((*K)(nil)).Elem().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func isNil(key any) bool {
	if key == nil {
		return true
	}
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}
