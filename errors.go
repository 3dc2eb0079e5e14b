package lrucache

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by New when Options.Capacity is not positive.
var ErrInvalidCapacity = errors.New("lrucache: capacity must be positive")

// SweepPanicError wraps a value recovered from a panic inside the background
// sweep or an eviction callback it ran.
type SweepPanicError struct {
	Key   any // zero when the panic was outside a per-entry step
	Value any
}

func (e *SweepPanicError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("lrucache: sweep recovered panic for key %v: %v", e.Key, e.Value)
	}
	return fmt.Sprintf("lrucache: sweep recovered panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *SweepPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
