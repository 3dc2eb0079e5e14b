package lrucache

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestSweepRemovesExpiredWithoutGet(t *testing.T) {
	clk := newFakeClock()
	var reasons []EvictReason
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) {
		o.Now = clk.Now
		o.OnEvict = func(_ string, _ int, r EvictReason) { reasons = append(reasons, r) }
	})
	impl := mustImpl(t, c)

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	c.Set("forever", 3, NoExpiration)
	clk.Advance(2 * time.Second)

	if n := c.Len(); n != 3 {
		t.Fatalf("Len before sweep=%d want 3", n)
	}
	if removed := impl.sweep(clk.Now()); removed != 1 {
		t.Fatalf("sweep removed %d want 1", removed)
	}
	if got, want := c.Keys(), []string{"forever", "long"}; !slices.Equal(got, want) {
		t.Fatalf("keys=%v want %v", got, want)
	}
	if want := []EvictReason{EvictExpired}; !slices.Equal(reasons, want) {
		t.Fatalf("OnEvict reasons=%v want %v", reasons, want)
	}
	if s := c.Stats(); s.Expirations != 1 || s.Evictions != 0 {
		t.Fatalf("stats=%+v", s)
	}
	checkConsistent(t, c)

	if removed := impl.sweep(clk.Now()); removed != 0 {
		t.Fatalf("second sweep removed %d want 0", removed)
	}
}

func TestSweepSkipsEntriesRefreshedAfterScan(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) { o.Now = clk.Now })
	impl := mustImpl(t, c)

	c.Set("a", 1, time.Second)
	clk.Advance(2 * time.Second)
	c.Set("a", 2, time.Hour)

	if removed := impl.sweep(clk.Now()); removed != 0 {
		t.Fatalf("sweep removed a refreshed entry")
	}
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Fatalf("Get=%v,%v want 2,true", v, ok)
	}
}

func TestBackgroundSweep(t *testing.T) {
	h := &recHooks{}
	c := newTestCache[string, string](t, 10, func(o *Options[string, string]) {
		o.SweepInterval = 10 * time.Millisecond
		o.Hooks = h
	})

	c.Set("ttl", "v", 20*time.Millisecond)
	c.Set("keep", "v", NoExpiration)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !slices.Contains(c.Keys(), "ttl") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if slices.Contains(c.Keys(), "ttl") {
		t.Fatalf("background sweep did not remove expired entry")
	}
	if _, ok := c.Get("keep"); !ok {
		t.Fatalf("sweep removed a non-expiring entry")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sweeps == 0 {
		t.Fatalf("SweepDone hook never fired")
	}
	if !slices.Contains(h.evicted, "expired") {
		t.Fatalf("Evicted hook reasons=%v want expired", h.evicted)
	}
}

func TestSweepSurvivesPanickingCallback(t *testing.T) {
	clk := newFakeClock()
	h := &recHooks{}
	var seen []string
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) {
		o.Now = clk.Now
		o.Hooks = h
		o.OnEvict = func(k string, _ int, _ EvictReason) {
			seen = append(seen, k)
			if k == "bad" {
				panic("boom")
			}
		}
	})
	impl := mustImpl(t, c)

	c.Set("bad", 1, time.Second)
	c.Set("good", 2, time.Second)
	clk.Advance(time.Minute)

	impl.sweepOnce()

	if n := c.Len(); n != 0 {
		t.Fatalf("Len=%d want 0; a panicking callback must not stop the pass", n)
	}
	slices.Sort(seen)
	if want := []string{"bad", "good"}; !slices.Equal(seen, want) {
		t.Fatalf("callbacks ran for %v want %v", seen, want)
	}

	if len(h.panics) != 1 {
		t.Fatalf("panics=%v want exactly one", h.panics)
	}
	var spe *SweepPanicError
	if !errors.As(h.panics[0], &spe) || spe.Key != "bad" || spe.Value != "boom" {
		t.Fatalf("unexpected panic error: %#v", h.panics[0])
	}
	if h.sweeps != 1 {
		t.Fatalf("SweepDone fired %d times want 1", h.sweeps)
	}

	// later passes still work
	c.Set("later", 3, time.Second)
	clk.Advance(time.Minute)
	impl.sweepOnce()
	if n := c.Len(); n != 0 {
		t.Fatalf("Len=%d after second pass", n)
	}
}

func TestSweepRecoversPanicOutsideEntries(t *testing.T) {
	h := &recHooks{}
	calls := 0
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) {
		o.Hooks = h
		o.Now = func() time.Time {
			calls++
			if calls > 1 {
				panic(errors.New("clock failure"))
			}
			return time.Now()
		}
	})
	impl := mustImpl(t, c)
	c.Set("a", 1, time.Second)

	impl.sweepOnce() // must not propagate

	if len(h.panics) != 1 {
		t.Fatalf("panics=%v want one", h.panics)
	}
	var spe *SweepPanicError
	if !errors.As(h.panics[0], &spe) || spe.Key != nil {
		t.Fatalf("unexpected panic error: %#v", h.panics[0])
	}
	if errors.Unwrap(spe) == nil {
		t.Fatalf("error panic value should unwrap")
	}
}

func TestCloseIdempotentAndCacheUsable(t *testing.T) {
	c, err := New[string, int](Options[string, int]{Capacity: 2, SweepInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := c.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("close again: %v", err)
	}

	c.Set("a", 1, NoExpiration)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("cache unusable after Close: %v,%v", v, ok)
	}
	if !c.Remove("a") {
		t.Fatalf("Remove after Close failed")
	}
}

func TestCloseWithoutSweep(t *testing.T) {
	c, err := New[string, int](Options[string, int]{Capacity: 1, SweepInterval: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDefaultSweepInterval(t *testing.T) {
	c, err := New[string, int](Options[string, int]{Capacity: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	if got := mustImpl(t, c).sweepInterval; got != defaultSweep {
		t.Fatalf("sweepInterval=%v want %v", got, defaultSweep)
	}
}

// panickyHooks panics on every eviction and, optionally, when told about it.
type panickyHooks struct {
	recHooks
	panicOnReport bool
}

func (h *panickyHooks) Evicted(string) { panic("hook exploded") }

func (h *panickyHooks) SweepPanic(err error) {
	if h.panicOnReport {
		panic("report exploded")
	}
	h.recHooks.SweepPanic(err)
}

func TestSweepSurvivesPanickingEvictedHook(t *testing.T) {
	clk := newFakeClock()
	h := &panickyHooks{}
	var seen []string
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) {
		o.Now = clk.Now
		o.Hooks = h
		o.OnEvict = func(k string, _ int, _ EvictReason) { seen = append(seen, k) }
	})
	impl := mustImpl(t, c)

	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, 1, time.Second)
	}
	clk.Advance(time.Minute)
	impl.sweepOnce()

	if n := c.Len(); n != 0 {
		t.Fatalf("Len=%d want 0", n)
	}
	slices.Sort(seen)
	if want := []string{"a", "b", "c"}; !slices.Equal(seen, want) {
		t.Fatalf("OnEvict ran for %v want %v", seen, want)
	}
	if s := c.Stats(); s.Expirations != 3 {
		t.Fatalf("Expirations=%d want 3", s.Expirations)
	}
	if len(h.panics) != 3 {
		t.Fatalf("reported panics=%d want 3", len(h.panics))
	}
	if h.sweeps != 1 {
		t.Fatalf("SweepDone fired %d times want 1", h.sweeps)
	}
}

func TestPanickingPanicHookIsContained(t *testing.T) {
	clk := newFakeClock()
	h := &panickyHooks{panicOnReport: true}
	c := newTestCache[string, int](t, 10, func(o *Options[string, int]) {
		o.Now = clk.Now
		o.Hooks = h
	})
	impl := mustImpl(t, c)

	c.Set("a", 1, time.Second)
	c.Set("b", 2, time.Second)
	clk.Advance(time.Minute)

	impl.sweepOnce() // must not propagate

	if n := c.Len(); n != 0 {
		t.Fatalf("Len=%d want 0", n)
	}
	if s := c.Stats(); s.Expirations != 2 {
		t.Fatalf("Expirations=%d want 2", s.Expirations)
	}
}
