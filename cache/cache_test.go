package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestCache() (*TrackingCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewTrackingCacheWithClock(clock.Now), clock
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v", 30)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestSetOverwrites(t *testing.T) {
	c, _ := newTestCache()

	c.Set("k", "old", 30)
	c.Set("k", "new", 30)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestExpiry(t *testing.T) {
	c, clock := newTestCache()

	c.Set("k", "v", 30)

	clock.Advance(29 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// The expired entry was removed on read, not just hidden.
	assert.Equal(t, 0, c.Len())
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache()

	c.Set("k", "v", 30)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	c.Delete("k")
}

func TestDeletePattern(t *testing.T) {
	c, _ := newTestCache()

	c.Set(TrackingKey("MMT1"), 1, 30)
	c.Set(TrackingKey("MMT2"), 2, 30)
	c.Set("other:key", 3, 30)

	c.DeletePattern("shipment:track:*")

	_, ok := c.Get(TrackingKey("MMT1"))
	assert.False(t, ok)
	_, ok = c.Get(TrackingKey("MMT2"))
	assert.False(t, ok)

	got, ok := c.Get("other:key")
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestSweep(t *testing.T) {
	c, clock := newTestCache()

	c.Set("short", 1, 10)
	c.Set("long", 2, 120)
	require.Equal(t, 2, c.Len())

	clock.Advance(30 * time.Second)
	c.Sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
}

func TestTrackingKey(t *testing.T) {
	assert.Equal(t, "shipment:track:MMT123", TrackingKey("MMT123"))
}
