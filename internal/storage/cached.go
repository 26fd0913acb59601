package storage

import (
	"context"

	"wealthwise/internal/cache"
)

// Cached fronts a BlobStore with a read-through, write-through cache.
// Misses are not cached, so a key created by another instance becomes
// visible on the next read.
type Cached struct {
	inner BlobStore
	cache cache.Cache[[]byte]
}

var _ BlobStore = (*Cached)(nil)

func NewCached(inner BlobStore, c cache.Cache[[]byte]) *Cached {
	return &Cached{inner: inner, cache: c}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.cache.Get(key); ok {
		return append([]byte(nil), v...), nil
	}
	v, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]byte(nil), v...))
	return v, nil
}

func (c *Cached) Put(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Put(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, append([]byte(nil), value...))
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return c.inner.Delete(ctx, key)
}

// Ping forwards to the wrapped store when it supports health checks.
func (c *Cached) Ping(ctx context.Context) error {
	if p, ok := c.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
