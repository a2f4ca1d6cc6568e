package caches

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malversoft/cachex/keys"
)

// fakeClock is a manually advanced Timer.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL(WithMaxSize(8), WithTTL(time.Minute), WithTimer(clock.Now))

	require.NoError(t, c.Set("a", 1))
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	info := c.Info()
	assert.Equal(t, uint64(1), info.Hits)
	assert.Equal(t, uint64(1), info.Misses)
}

func TestTTLCapacityEviction(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL(WithMaxSize(2), WithTTL(time.Hour), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	_, ok := c.Get("a")
	assert.True(t, ok)

	require.NoError(t, c.Set("c", 3))
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestTTLWritePurgesExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL(WithMaxSize(8), WithTTL(time.Minute), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	assert.Equal(t, 2, c.Len())

	clock.Advance(2 * time.Minute)
	require.NoError(t, c.Set("c", 3))
	assert.Equal(t, 1, c.Len())
}

func TestTLRUPerEntryExpiry(t *testing.T) {
	clock := newFakeClock()
	ttu := func(key keys.Key, value any, now time.Time) time.Time {
		if key == "short" {
			return now.Add(time.Second)
		}
		return now.Add(time.Hour)
	}
	c := NewTLRU(ttu, WithMaxSize(8), WithTimer(clock.Now))
	require.NoError(t, c.Set("short", 1))
	require.NoError(t, c.Set("long", 2))

	clock.Advance(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
}

func TestTLRUSkipsAlreadyStale(t *testing.T) {
	clock := newFakeClock()
	ttu := func(key keys.Key, value any, now time.Time) time.Time {
		return now // expires immediately
	}
	c := NewTLRU(ttu, WithMaxSize(8), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	assert.Equal(t, 0, c.Len())
}

func TestUnboundedTTLExpiresButNeverEvicts(t *testing.T) {
	clock := newFakeClock()
	c := NewUnboundedTTL(WithTTL(time.Minute), WithTimer(clock.Now))
	assert.Equal(t, 0, c.MaxSize())

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestTTLClearPreservesEvictionOrder(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL(WithMaxSize(2), WithTTL(time.Hour), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	c.Clear()

	// After Clear the backend still evicts in LRU order.
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	_, ok := c.Get("a")
	assert.True(t, ok)
	require.NoError(t, c.Set("c", 3))
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestUnboundedTTLClearStaysUnbounded(t *testing.T) {
	clock := newFakeClock()
	c := NewUnboundedTTL(WithTTL(time.Hour), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	c.Clear()

	for i := 0; i < 300; i++ {
		require.NoError(t, c.Set(keys.Key(strconv.Itoa(i)), i))
	}
	assert.Equal(t, 300, c.Len())
}

func TestTTLClearResets(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL(WithMaxSize(8), WithTTL(time.Minute), WithTimer(clock.Now))
	require.NoError(t, c.Set("a", 1))
	_, _ = c.Get("a")
	c.Clear()
	assert.Equal(t, 0, c.Len())
	info := c.Info()
	assert.Equal(t, uint64(0), info.Hits)
	assert.Equal(t, uint64(0), info.Misses)
}
