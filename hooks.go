package lrucache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking. The cache never calls them
// while holding its lock, but they still run on the caller's goroutine.
type Hooks interface {
	// An entry left the cache without Remove/Clear.
	// reason ∈ {"capacity", "expired"}
	Evicted(reason string)

	// A sweep pass finished; removed is the number of expired entries dropped.
	SweepDone(removed int, took time.Duration)

	// A panic was recovered inside a sweep pass or an eviction callback.
	SweepPanic(err error)

	// A nil key was refused at the API boundary. op ∈ {"set", "get", "remove"}
	KeyRejected(op string)

	// tiered: an L2 entry was deleted on read.
	// reason ∈ {"corrupt", "gen_mismatch", "expired", "value_decode"}
	TierSelfHeal(storageKey, reason string)

	// tiered: writing an L1 victim to L2 failed (err) or was refused (err == nil).
	TierDemoteFailed(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Evicted(string)                 {}
func (NopHooks) SweepDone(int, time.Duration)   {}
func (NopHooks) SweepPanic(error)               {}
func (NopHooks) KeyRejected(string)             {}
func (NopHooks) TierSelfHeal(string, string)    {}
func (NopHooks) TierDemoteFailed(string, error) {}
