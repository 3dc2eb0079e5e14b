package lru

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/lrucache"
)

func TestProviderContract(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Capacity: 2, SweepInterval: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(ctx)

	if _, ok, err := p.Get(ctx, "a"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}

	buf := []byte("one")
	if ok, err := p.Set(ctx, "a", buf, 1, 0); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	buf[0] = 'X' // caller reuses its buffer

	got, ok, err := p.Get(ctx, "a")
	if !ok || err != nil || string(got) != "one" {
		t.Fatalf("Get=%q,%v,%v want one", got, ok, err)
	}

	_, _ = p.Set(ctx, "b", []byte("two"), 1, time.Hour)
	_, _, _ = p.Get(ctx, "a")                             // b is now LRU
	_, _ = p.Set(ctx, "c", []byte("three"), 1, time.Hour) // evicts b
	if _, ok, _ := p.Get(ctx, "b"); ok {
		t.Fatalf("expected b evicted as least recently used")
	}

	if err := p.Del(ctx, "a"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "a"); err != nil {
		t.Fatalf("Del absent: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "a"); ok {
		t.Fatalf("a still present after Del")
	}
	if s := p.Stats(); s.Evictions != 1 {
		t.Fatalf("evictions=%d want 1", s.Evictions)
	}
}

func TestProviderRejectsBadCapacity(t *testing.T) {
	if _, err := New(Config{Capacity: 0}); !errors.Is(err, lrucache.ErrInvalidCapacity) {
		t.Fatalf("err=%v want ErrInvalidCapacity", err)
	}
}
