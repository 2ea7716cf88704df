package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"link-router/internal/domain"
)

// LinkEntry is a snapshot of a link record owned by the cache. TotalClicks
// can run ahead of the durable counter until the click recorder's increment
// lands; both converge, neither is authoritative mid-flight.
type LinkEntry struct {
	ID          uint
	DomainID    uint
	ShortPath   string
	Targets     []domain.Target
	TotalClicks int64
	LastUpdated time.Time
}

// LinkCache maps (domain id, short path) to a link snapshot with a short TTL.
// Like the domain cache it is process-local and mutex-guarded; additionally
// it supports in-place click bumps so the redirect path never waits on a
// durable write.
type LinkCache struct {
	mu      sync.Mutex
	entries map[string]LinkEntry
	ttl     time.Duration
	now     func() time.Time // injectable clock for tests
}

// NewLinkCache creates a link cache with the given TTL.
func NewLinkCache(ttl time.Duration) *LinkCache {
	return &LinkCache{
		entries: make(map[string]LinkEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func key(domainID uint, shortPath string) string {
	return fmt.Sprintf("%d:%s", domainID, shortPath)
}

// Get returns the cached entry for a (domain, path) pair. Expired entries
// are evicted on access and reported as absent.
func (c *LinkCache) Get(domainID uint, shortPath string) (LinkEntry, bool) {
	k := key(domainID, shortPath)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[k]
	if !ok {
		return LinkEntry{}, false
	}

	if c.now().Sub(entry.LastUpdated) > c.ttl {
		delete(c.entries, k)
		return LinkEntry{}, false
	}

	return entry, true
}

// Set stores a fresh snapshot of the link, replacing any existing entry
// (last-writer-wins). Targets are copied so the entry stays owned by the
// cache even if the caller mutates the record afterwards.
func (c *LinkCache) Set(domainID uint, shortPath string, record *domain.Link) {
	targets := make([]domain.Target, 0, len(record.TargetURLs))
	for _, t := range record.TargetURLs {
		targets = append(targets, domain.Target{
			URL:      t.URL,
			Weight:   t.Weight,
			IsActive: t.IsActive,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key(domainID, shortPath)] = LinkEntry{
		ID:          record.ID,
		DomainID:    domainID,
		ShortPath:   shortPath,
		Targets:     targets,
		TotalClicks: record.TotalClicks,
		LastUpdated: c.now(),
	}
}

// BumpClicks increments the cached click counter in place and refreshes
// LastUpdated, extending the entry's life. It never touches the durable
// store; the recorder's asynchronous increment catches the store up later.
// Returns false when the entry is absent or expired.
func (c *LinkCache) BumpClicks(domainID uint, shortPath string) bool {
	k := key(domainID, shortPath)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[k]
	if !ok {
		return false
	}

	if c.now().Sub(entry.LastUpdated) > c.ttl {
		delete(c.entries, k)
		return false
	}

	entry.TotalClicks++
	entry.LastUpdated = c.now()
	c.entries[k] = entry
	return true
}

// Cleanup evicts every entry older than the TTL and reports how many were
// removed.
func (c *LinkCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, entry := range c.entries {
		if now.Sub(entry.LastUpdated) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *LinkCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]LinkEntry)
}

// Len returns the current number of entries, expired or not.
func (c *LinkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartJanitor runs Cleanup on a fixed interval until the context is
// cancelled.
func (c *LinkCache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}
