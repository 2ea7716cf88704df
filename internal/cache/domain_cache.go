package cache

import (
	"context"
	"sync"
	"time"

	"link-router/internal/domain"
)

// DomainEntry is a snapshot of a domain record owned by the cache. It is
// superseded, never merged, whenever a fresh read from the store occurs.
type DomainEntry struct {
	ID          uint
	Hostname    string
	IsActive    bool
	IsVerified  bool
	LastUpdated time.Time
}

// DomainCache maps a normalized hostname to its routing record. It is
// process-local: each server instance holds its own copy, and staleness is
// bounded only by the TTL. Every operation is guarded by a single mutex so
// the cache stays safe under concurrent request handlers.
type DomainCache struct {
	mu      sync.Mutex
	entries map[string]DomainEntry
	ttl     time.Duration
	now     func() time.Time // injectable clock for tests
}

// NewDomainCache creates a domain cache with the given TTL.
func NewDomainCache(ttl time.Duration) *DomainCache {
	return &DomainCache{
		entries: make(map[string]DomainEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached entry for a hostname. A key miss and an expired
// entry both report absence; an expired entry is evicted on access in
// addition to the periodic sweep. The hostname is used verbatim — the
// resolver normalizes before lookup.
func (c *DomainCache) Get(hostname string) (DomainEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[hostname]
	if !ok {
		return DomainEntry{}, false
	}

	if c.now().Sub(entry.LastUpdated) > c.ttl {
		delete(c.entries, hostname)
		return DomainEntry{}, false
	}

	return entry, true
}

// Set stores a fresh snapshot of the record under the hostname,
// unconditionally replacing any existing entry (last-writer-wins).
func (c *DomainCache) Set(hostname string, record *domain.Domain) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hostname] = DomainEntry{
		ID:          record.ID,
		Hostname:    record.Hostname,
		IsActive:    record.IsActive,
		IsVerified:  record.IsVerified,
		LastUpdated: c.now(),
	}
}

// Cleanup evicts every entry older than the TTL and reports how many were
// removed.
func (c *DomainCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for hostname, entry := range c.entries {
		if now.Sub(entry.LastUpdated) > c.ttl {
			delete(c.entries, hostname)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *DomainCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]DomainEntry)
}

// Len returns the current number of entries, expired or not.
func (c *DomainCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartJanitor runs Cleanup on a fixed interval until the context is
// cancelled.
func (c *DomainCache) StartJanitor(ctx context.Context, interval time.Duration) {
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
