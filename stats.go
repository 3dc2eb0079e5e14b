package lrucache

import "sync/atomic"

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Hits        uint64
	Misses      uint64 // includes reads of expired entries
	Evictions   uint64 // capacity evictions
	Expirations uint64 // entries removed by the sweep
	Rejected    uint64 // operations refused because of a nil key
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first read.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
	rejected    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Rejected:    c.rejected.Load(),
	}
}
