// Package lrucache implements a generic, concurrency-safe in-memory cache with
// a fixed entry capacity, least-recently-used eviction and per-entry TTLs.
//
// Components:
//   - Entry store: map from key to value, expiry instant and recency slot.
//   - Recency index: arena-backed doubly linked list bounded by two sentinel
//     nodes (see internal/recency). Front is MRU, tail-adjacent is LRU.
//   - Expiry: reads treat expired entries as absent (lazy); a background
//     sweep physically removes them on a fixed interval.
//   - One sync.RWMutex guards the store and the index as a unit.
//
// Usage:
//
//	c, err := lrucache.New[string, User](lrucache.Options[string, User]{
//	    Capacity:      10_000,
//	    DefaultTTL:    5 * time.Minute,
//	    SweepInterval: 10 * time.Second,
//	})
//	if err != nil { ... }
//	defer c.Close(ctx)
//
//	c.Set("u:1", u, lrucache.DefaultExpiration)
//	if v, ok := c.Get("u:1"); ok { ... }
//
// A second tier backed by an external byte store lives in package tiered.
package lrucache
