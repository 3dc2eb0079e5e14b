package bigcache

import (
	"context"
	"testing"
	"time"
)

func newSmall(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{
		LifeWindow:         time.Minute,
		Shards:             8,
		MaxEntriesInWindow: 100,
		MaxEntrySize:       64,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestBigcacheProvider(t *testing.T) {
	ctx := context.Background()
	p := newSmall(t)

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, time.Second); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "k")
	if !ok || err != nil || string(b) != "v" {
		t.Fatalf("Get=%q,%v,%v", b, ok, err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len=%d want 1", p.Len())
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of absent key should be nil, got %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("still present after Del")
	}
}
