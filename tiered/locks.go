package tiered

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 64

// keyLocks serializes generation changes and L1 writes for the same key.
// Keys sharing a stripe just wait for each other.
type keyLocks [lockStripes]sync.Mutex

func (l *keyLocks) of(key string) *sync.Mutex {
	return &l[xxhash.Sum64String(key)%lockStripes]
}
