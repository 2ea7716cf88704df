package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"link-router/internal/domain"
)

// fakeClock lets tests move cache time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDomainCache(ttl time.Duration) (*DomainCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewDomainCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestDomainCache_GetMiss(t *testing.T) {
	c, _ := newTestDomainCache(5 * time.Minute)

	_, ok := c.Get("example.com")
	assert.False(t, ok)
}

func TestDomainCache_SetAndGet(t *testing.T) {
	c, _ := newTestDomainCache(5 * time.Minute)

	c.Set("example.com", &domain.Domain{
		ID:         7,
		Hostname:   "example.com",
		IsActive:   true,
		IsVerified: true,
	})

	entry, ok := c.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, uint(7), entry.ID)
	assert.Equal(t, "example.com", entry.Hostname)
	assert.True(t, entry.IsActive)
	assert.True(t, entry.IsVerified)
}

func TestDomainCache_TTLBoundary(t *testing.T) {
	c, clock := newTestDomainCache(5 * time.Minute)

	c.Set("example.com", &domain.Domain{ID: 1, Hostname: "example.com", IsActive: true})

	// Still fresh at t0 + 4min.
	clock.advance(4 * time.Minute)
	_, ok := c.Get("example.com")
	assert.True(t, ok)

	// Absent past the TTL at t0 + 6min, and evicted on access.
	clock.advance(2 * time.Minute)
	_, ok = c.Get("example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestDomainCache_SetOverwrites(t *testing.T) {
	c, clock := newTestDomainCache(5 * time.Minute)

	c.Set("example.com", &domain.Domain{ID: 1, Hostname: "example.com", IsActive: true})
	first, ok := c.Get("example.com")
	require.True(t, ok)

	clock.advance(time.Minute)
	c.Set("example.com", &domain.Domain{ID: 1, Hostname: "example.com", IsActive: false})

	second, ok := c.Get("example.com")
	require.True(t, ok)
	assert.False(t, second.IsActive, "second snapshot wins")
	assert.True(t, second.LastUpdated.After(first.LastUpdated), "LastUpdated refreshed")
	assert.Equal(t, 1, c.Len())
}

func TestDomainCache_CleanupSweepsExpired(t *testing.T) {
	c, clock := newTestDomainCache(5 * time.Minute)

	c.Set("old.example.com", &domain.Domain{ID: 1, Hostname: "old.example.com", IsActive: true})
	clock.advance(4 * time.Minute)
	c.Set("fresh.example.com", &domain.Domain{ID: 2, Hostname: "fresh.example.com", IsActive: true})
	clock.advance(2 * time.Minute)

	// old is now 6 minutes stale, fresh only 2.
	removed := c.Cleanup()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh.example.com")
	assert.True(t, ok)
}

func TestDomainCache_Clear(t *testing.T) {
	c, _ := newTestDomainCache(5 * time.Minute)

	c.Set("a.example.com", &domain.Domain{ID: 1, Hostname: "a.example.com"})
	c.Set("b.example.com", &domain.Domain{ID: 2, Hostname: "b.example.com"})
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
