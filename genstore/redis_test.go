package genstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisGenStoreKeyspace(t *testing.T) {
	s := NewRedisGenStore(RedisConfig{Namespace: "user"})
	if got := s.key("l2:user:0:42"); got != "gen:user:l2:user:0:42" {
		t.Fatalf("key=%q", got)
	}
	if n := s.Cleanup(time.Hour); n != 0 {
		t.Fatalf("Cleanup=%d want 0", n)
	}
}

func TestRedisGenStoreSurfacesTransportErrors(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisGenStore(RedisConfig{Client: rdb, Namespace: "user", TTL: time.Hour, CloseClient: true})

	if _, err := s.Snapshot(ctx, "k"); err == nil {
		t.Fatalf("Snapshot: want transport error")
	}
	if _, err := s.Bump(ctx, "k"); err == nil {
		t.Fatalf("Bump: want transport error")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
