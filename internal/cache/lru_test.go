package cache

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", "1")
	c.Set("a", "2")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // b is now the oldest
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCacheTTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("a", "1")
	clock.Advance(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Size(), "expired entries are dropped on read")
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("old", "1")
	clock.Advance(30 * time.Second)
	c.Set("new", "2")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())

	m := NewManager()
	m.Register(c)
	clock.Advance(time.Minute)
	assert.Equal(t, 1, m.CleanNow())
	m.Stop()
	m.Stop()
}

func TestLRUCacheDeleteFunc(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("group:1:2025-01", "a")
	c.Set("group:1:2025-02", "b")
	c.Set("group:2:2025-01", "c")

	n := c.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, "group:1:") })
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.Size())

	c.Delete("group:2:2025-01")
	assert.Zero(t, c.Size())
}

func TestManagerStartStop(t *testing.T) {
	c, _ := newTestCache(1, time.Nanosecond)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	m.Stop()
}
