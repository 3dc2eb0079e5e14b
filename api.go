package lrucache

import (
	"context"
	"time"
)

const (
	// DefaultExpiration passed to Set applies Options.DefaultTTL.
	DefaultExpiration time.Duration = 0
	// NoExpiration passed to Set stores an entry that never expires.
	// Any negative TTL has the same effect.
	NoExpiration time.Duration = -1
)

// EvictReason tells OnEvict why an entry left the cache.
type EvictReason uint8

const (
	// EvictCapacity: the entry was the least recently used one when a new key
	// was inserted into a full cache.
	EvictCapacity EvictReason = iota + 1
	// EvictExpired: the background sweep removed the entry after its TTL elapsed.
	EvictExpired
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Cache is a bounded LRU cache with TTLs. All methods are safe for concurrent use.
//
// Nil keys are refused, as are interface keys holding a non-comparable
// dynamic type; both count as Rejected in Stats.
type Cache[K comparable, V any] interface {
	// Set inserts or overwrites key. Overwriting keeps the entry, moves it to
	// the front and resets its expiry; it never evicts. Inserting a new key
	// into a full cache evicts exactly one least recently used entry.
	Set(key K, value V, ttl time.Duration)
	// Get returns the value and marks it most recently used. Expired entries
	// read as absent even if the sweep has not removed them yet.
	Get(key K) (V, bool)
	// Remove deletes key and reports whether it was present.
	Remove(key K) bool
	// Clear drops every entry.
	Clear()
	// Len counts stored entries, including expired ones not yet swept.
	Len() int
	// Keys lists stored keys from most to least recently used.
	Keys() []K
	Stats() Stats
	// Close stops the background sweep. The cache remains usable.
	Close(ctx context.Context) error
}

// Options configure a Cache. Only Capacity is required.
type Options[K comparable, V any] struct {
	Capacity int // max entries; must be > 0

	DefaultTTL    time.Duration // used by Set(..., DefaultExpiration); 0 => never expires
	SweepInterval time.Duration // 0 => 5s; negative disables the background sweep

	Logger  Logger                                 // nil => NopLogger
	Hooks   Hooks                                  // nil => NopHooks
	OnEvict func(key K, value V, reason EvictReason) // called outside the lock

	// Now overrides the clock. Tests use it to step time deterministically.
	Now func() time.Time
}

func New[K comparable, V any](opts Options[K, V]) (Cache[K, V], error) {
	c, err := newCache[K, V](opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}
