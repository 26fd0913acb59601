package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	_, ok := c.Get("a") // a becomes most recent
	assert.True(t, ok)

	c.Set("c", "3")
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Minute)
	c.Set("c", 3)

	assert.Equal(t, 2, c.CleanExpired())
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(time.Hour)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 1, m.Sweep())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
