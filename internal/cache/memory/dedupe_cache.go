// Package memory implements the dedupe cache as an in-process map. One scan
// pipeline owns one cache; if multiple pipelines run in parallel, each must
// own its own instance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// DedupeCache suppresses repeat alerts for a (match, market, selection) key
// within a cooldown window. Stale entries are ignored on lookup and
// overwritten on the next Mark; Cleanup exists only to bound memory on
// long-running processes. Safe for concurrent use.
type DedupeCache struct {
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
}

// NewDedupeCache creates a cache with the given cooldown window.
func NewDedupeCache(window time.Duration) *DedupeCache {
	return &DedupeCache{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

// NewDedupeCacheWithClock creates a cache with an injectable clock for tests.
func NewDedupeCacheWithClock(window time.Duration, now func() time.Time) *DedupeCache {
	c := NewDedupeCache(window)
	c.now = now
	return c
}

// SeenRecently reports whether the key was marked within the window.
func (c *DedupeCache) SeenRecently(_ context.Context, matchID string, market domain.Market, selection string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.seen[key(matchID, market, selection)]
	if !ok {
		return false, nil
	}
	return c.now().Sub(ts) < c.window, nil
}

// Mark records or refreshes the key at the current time.
func (c *DedupeCache) Mark(_ context.Context, matchID string, market domain.Market, selection string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[key(matchID, market, selection)] = c.now()
	return nil
}

// Cleanup drops entries that expired beyond the window.
func (c *DedupeCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, ts := range c.seen {
		if now.Sub(ts) >= c.window {
			delete(c.seen, k)
		}
	}
}

func key(matchID string, market domain.Market, selection string) string {
	return matchID + "|" + string(market) + "|" + selection
}

var _ domain.DedupeCache = (*DedupeCache)(nil)
