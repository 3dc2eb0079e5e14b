// Package lru exposes an lrucache.Cache as a provider.Provider, so a larger
// in-process LRU can serve as the second tier of a smaller one.
package lru

import (
	"context"
	"time"

	"github.com/unkn0wn-root/lrucache"
	pr "github.com/unkn0wn-root/lrucache/provider"
)

type Provider struct {
	c lrucache.Cache[string, []byte]
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Capacity      int           // max entries; required
	SweepInterval time.Duration // see lrucache.Options
	Logger        lrucache.Logger
}

func New(cfg Config) (*Provider, error) {
	c, err := lrucache.New[string, []byte](lrucache.Options[string, []byte]{
		Capacity:      cfg.Capacity,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

// NewWithCache wraps an existing cache. Close will stop its sweep.
func NewWithCache(c lrucache.Cache[string, []byte]) *Provider { return &Provider{c: c} }

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

// Set stores a private copy of value; callers may reuse their buffer.
// cost is ignored (capacity is counted in entries).
func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = lrucache.NoExpiration
	}
	p.c.Set(key, append([]byte(nil), value...), ttl)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) Close(ctx context.Context) error {
	return p.c.Close(ctx)
}

// Stats forwards the wrapped cache counters.
func (p *Provider) Stats() lrucache.Stats { return p.c.Stats() }
