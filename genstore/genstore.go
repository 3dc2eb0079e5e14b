// Package genstore keeps per-key generation counters for the second tier.
//
// A tier entry records the generation observed when it was written. Writing
// or removing a key bumps its generation, so any older copy still sitting in
// the byte store no longer matches and is dropped on read.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live.
// Use LocalGenStore (default) for in-process gens, or RedisGenStore when
// several processes share one second tier.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes generations not bumped within retention and returns
	// how many it removed (always 0 for stores that expire on their own).
	Cleanup(retention time.Duration) int
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
