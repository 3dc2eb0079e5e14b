// Package tiered puts a byte-store second tier (L2) behind an lrucache.
//
// L1 capacity victims are demoted into L2 with their remaining TTL, and L1
// misses are served from L2 and promoted back. Each write bumps a per-key
// generation and every L2 frame records the generation it was written under,
// so an older copy left in L2 is rejected (and deleted) on read instead of
// resurfacing.
//
//	t, err := tiered.New[User](tiered.Options[User]{
//	    Namespace: "user",
//	    Capacity:  1_000,
//	    Provider:  l2, // ristretto, bigcache, redis or lru provider
//	    Codec:     codec.Msgpack[User]{},
//	})
//
// Expired L1 entries are not demoted. Clear advances a namespace epoch, so
// L2 entries written before it become unreachable and age out by their TTL.
package tiered

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/lrucache"
	c "github.com/unkn0wn-root/lrucache/codec"
	gen "github.com/unkn0wn-root/lrucache/genstore"
	"github.com/unkn0wn-root/lrucache/internal/util"
	"github.com/unkn0wn-root/lrucache/internal/wire"
	pr "github.com/unkn0wn-root/lrucache/provider"
)

const (
	keyPrefix            = "l2"
	defaultL2TTL         = time.Hour
	defaultDemoteTimeout = time.Second
	defaultGenRetention  = 30 * 24 * time.Hour
	defaultGenCleanup    = time.Hour
)

type SetCostFunc func(storageKey string, raw []byte) int64

// Options configure a tiered cache. Namespace, Capacity, Provider and Codec
// are required.
type Options[V any] struct {
	Namespace string // isolates keys in a shared L2, e.g. "user", "session"
	Capacity  int    // L1 entries
	Provider  pr.Provider
	Codec     c.Codec[V]

	DefaultTTL    time.Duration // L1 default, see lrucache.Options
	SweepInterval time.Duration // L1 sweep, see lrucache.Options
	L2TTL         time.Duration // TTL for demoted entries that never expire; 0 => 1h
	DemoteTimeout time.Duration // bound on one demotion's L2 I/O; 0 => 1s

	GenStore     gen.GenStore  // nil => LocalGenStore
	GenRetention time.Duration // local gen retention; 0 => 30d. Must exceed any L2 TTL.

	ComputeSetCost SetCostFunc // default 1
	Logger         lrucache.Logger
	Hooks          lrucache.Hooks
	Now            func() time.Time
}

// item is what L1 holds: the value plus what demotion needs to frame it.
type item[V any] struct {
	v         V
	expiresAt time.Time
	gen       uint64
	epoch     uint64 // epoch the generation belongs to
	demotable bool   // false when the write could not obtain a generation
}

type Cache[V any] struct {
	ns    string
	l1    lrucache.Cache[string, item[V]]
	l2    pr.Provider
	codec c.Codec[V]
	gen   gen.GenStore
	log   lrucache.Logger
	hooks lrucache.Hooks
	now   func() time.Time

	defaultTTL    time.Duration
	l2TTL         time.Duration
	demoteTimeout time.Duration
	cost          SetCostFunc

	epoch atomic.Uint64
	locks keyLocks
}

func New[V any](opts Options[V]) (*Cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("tiered: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("tiered: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("tiered: namespace is required")
	}

	t := &Cache[V]{
		ns:            opts.Namespace,
		l2:            opts.Provider,
		codec:         opts.Codec,
		log:           opts.Logger,
		hooks:         opts.Hooks,
		now:           opts.Now,
		defaultTTL:    opts.DefaultTTL,
		l2TTL:         opts.L2TTL,
		demoteTimeout: opts.DemoteTimeout,
		cost:          opts.ComputeSetCost,
	}
	if t.log == nil {
		t.log = lrucache.NopLogger{}
	}
	if t.hooks == nil {
		t.hooks = lrucache.NopHooks{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.l2TTL <= 0 {
		t.l2TTL = defaultL2TTL
	}
	if t.demoteTimeout <= 0 {
		t.demoteTimeout = defaultDemoteTimeout
	}
	if t.cost == nil {
		t.cost = func(string, []byte) int64 { return 1 }
	}

	l1, err := lrucache.New[string, item[V]](lrucache.Options[string, item[V]]{
		Capacity:      opts.Capacity,
		SweepInterval: opts.SweepInterval,
		Logger:        t.log,
		Hooks:         t.hooks,
		OnEvict:       t.demote,
		Now:           t.now,
	})
	if err != nil {
		return nil, err
	}
	t.l1 = l1

	if opts.GenStore != nil {
		t.gen = opts.GenStore
	} else {
		retention := opts.GenRetention
		if retention <= 0 {
			retention = defaultGenRetention
		}
		t.gen = gen.NewLocalGenStore(defaultGenCleanup, retention)
	}
	return t, nil
}

// Set writes key to L1 under a new generation. Older L2 copies of key become
// stale immediately. ttl follows lrucache.Cache.Set.
//
// The bump and the L1 write happen under the key's lock, so concurrent writers
// of one key leave L1 holding the value of the newest generation.
func (t *Cache[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) {
	ep := t.epoch.Load()
	sk := t.keyAt(ep, key)
	it := item[V]{v: v, epoch: ep}

	mu := t.locks.of(key)
	mu.Lock()
	defer mu.Unlock()

	g, err := t.gen.Bump(ctx, sk)
	if err != nil {
		// without a fresh generation an older L2 copy could still validate
		t.log.Warn("gen bump failed; dropping L2 copy", lrucache.Fields{"key": key, "err": err})
		t.del(ctx, sk, "set")
	} else {
		it.gen = g
		it.demotable = true
	}

	if ttl == lrucache.DefaultExpiration {
		ttl = t.defaultTTL
	}
	if ttl > 0 {
		it.expiresAt = t.now().Add(ttl)
	} else {
		ttl = lrucache.NoExpiration
	}
	t.l1.Set(key, it, ttl)
}

// Get reads L1, then L2. An L2 hit is promoted into L1. Only provider I/O
// errors are returned; bad L2 entries are deleted and read as a miss.
func (t *Cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if it, ok := t.l1.Get(key); ok {
		return it.v, true, nil
	}

	ep := t.epoch.Load()
	sk := t.keyAt(ep, key)
	raw, ok, err := t.l2.Get(ctx, sk)
	if err != nil || !ok {
		return zero, false, err
	}
	e, err := wire.Decode(raw)
	if err != nil {
		t.selfHeal(ctx, sk, "corrupt")
		return zero, false, nil
	}
	g, err := t.gen.Snapshot(ctx, sk)
	if err != nil {
		// cannot validate; leave the entry for a later read
		t.log.Warn("gen snapshot failed", lrucache.Fields{"key": key, "err": err})
		return zero, false, nil
	}
	if e.Gen != g {
		t.selfHeal(ctx, sk, "gen_mismatch")
		return zero, false, nil
	}
	now := t.now()
	if lrucache.Expired(e.ExpiresAt, now) {
		t.selfHeal(ctx, sk, "expired")
		return zero, false, nil
	}
	v, err := t.codec.Decode(e.Payload)
	if err != nil {
		t.selfHeal(ctx, sk, "value_decode")
		return zero, false, nil
	}

	t.promote(ctx, key, sk, item[V]{v: v, expiresAt: e.ExpiresAt, gen: g, epoch: ep, demotable: true}, now)
	return v, true, nil
}

// Remove drops key from both tiers. The generation bump alone already hides
// any L2 copy, so an error is returned only when the bump and the L2 delete
// both fail.
func (t *Cache[V]) Remove(ctx context.Context, key string) error {
	sk := t.storageKey(key)

	mu := t.locks.of(key)
	mu.Lock()
	t.l1.Remove(key)
	_, bumpErr := t.gen.Bump(ctx, sk)
	mu.Unlock()

	delErr := t.l2.Del(ctx, sk)

	switch {
	case bumpErr != nil && delErr != nil:
		return &RemoveError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	case bumpErr != nil:
		t.log.Warn("remove: gen bump failed", lrucache.Fields{"key": key, "err": bumpErr})
	case delErr != nil:
		t.log.Debug("remove: L2 delete failed", lrucache.Fields{"key": key, "err": delErr})
	}
	return nil
}

// Clear empties L1 and moves to a new epoch so no older L2 entry is reachable.
func (t *Cache[V]) Clear() {
	t.l1.Clear()
	e := t.epoch.Add(1)
	t.log.Debug("tier cleared", lrucache.Fields{"ns": t.ns, "epoch": e})
}

// Len counts L1 entries only.
func (t *Cache[V]) Len() int { return t.l1.Len() }

// Stats reports L1 counters.
func (t *Cache[V]) Stats() lrucache.Stats { return t.l1.Stats() }

// Close stops the L1 sweep and closes the generation store and the provider.
func (t *Cache[V]) Close(ctx context.Context) error {
	return errors.Join(
		t.l1.Close(ctx),
		t.gen.Close(ctx),
		t.l2.Close(ctx),
	)
}

// demote is L1's eviction callback. It runs outside the L1 lock.
func (t *Cache[V]) demote(key string, it item[V], reason lrucache.EvictReason) {
	if reason != lrucache.EvictCapacity || !it.demotable {
		return
	}
	ttl := t.l2TTL
	if !it.expiresAt.IsZero() {
		ttl = it.expiresAt.Sub(t.now())
		if ttl <= 0 {
			return
		}
	}

	// a victim from before Clear lands under its own, unreachable epoch
	sk := t.keyAt(it.epoch, key)
	payload, err := t.codec.Encode(it.v)
	if err != nil {
		t.demoteFailed(sk, err)
		return
	}
	raw := wire.Encode(it.gen, it.expiresAt, payload)

	ctx, cancel := context.WithTimeout(context.Background(), t.demoteTimeout)
	defer cancel()
	ok, err := t.l2.Set(ctx, sk, raw, t.cost(sk, raw), ttl)
	if err != nil {
		t.demoteFailed(sk, err)
		return
	}
	if !ok {
		t.log.Debug("L2 refused demoted entry (pressure)", lrucache.Fields{"key": key})
		t.hooks.TierDemoteFailed(sk, nil)
	}
}

// promote copies a validated L2 value into L1. Under the key's lock the
// generation is read again: if a Set or Remove ran since validation, their
// result stands and the L2 value is not installed.
func (t *Cache[V]) promote(ctx context.Context, key, sk string, it item[V], now time.Time) {
	ttl := lrucache.NoExpiration
	if !it.expiresAt.IsZero() {
		ttl = it.expiresAt.Sub(now)
	}

	mu := t.locks.of(key)
	mu.Lock()
	defer mu.Unlock()

	if g, err := t.gen.Snapshot(ctx, sk); err != nil || g != it.gen {
		t.log.Debug("promotion skipped; generation moved", lrucache.Fields{"key": key})
		return
	}
	t.l1.Set(key, it, ttl)
}

func (t *Cache[V]) selfHeal(ctx context.Context, sk, reason string) {
	t.del(ctx, sk, reason)
	t.log.Debug("L2 entry dropped", lrucache.Fields{"key": sk, "reason": reason})
	t.hooks.TierSelfHeal(sk, reason)
}

// del is a best-effort L2 delete; a failure leaves a copy that later reads reject.
func (t *Cache[V]) del(ctx context.Context, sk, why string) {
	if err := t.l2.Del(ctx, sk); err != nil {
		t.log.Debug("L2 delete failed", lrucache.Fields{"key": sk, "why": why, "err": err})
	}
}

func (t *Cache[V]) demoteFailed(sk string, err error) {
	t.log.Warn("L2 demotion failed", lrucache.Fields{"key": sk, "err": err})
	t.hooks.TierDemoteFailed(sk, err)
}

func (t *Cache[V]) storageKey(key string) string { return t.keyAt(t.epoch.Load(), key) }

func (t *Cache[V]) keyAt(epoch uint64, key string) string {
	return util.StorageKey(keyPrefix, t.ns, epoch, key)
}
