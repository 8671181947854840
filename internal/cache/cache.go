// Package cache provides the request-scoped result cache: a TTL cache keyed by
// request fingerprint ("kind:location"), with singleflight deduplication so
// concurrent identical lookups execute the upstream call chain once.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Cache is a bounded TTL cache. Entries expire ttl after insertion; when the
// entry count exceeds maxEntries on insert, expired entries are pruned first
// and the oldest entry is evicted if the cache is still over budget.
type Cache[V any] struct {
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// outcome carries the fetched value and whether it was served from the cache.
type outcome[V any] struct {
	value V
	hit   bool
}

// New creates a Cache. The clock is injected so tests can advance time; pass
// clockwork.NewRealClock() in production.
func New[V any](ttl time.Duration, maxEntries int, clock clockwork.Clock) *Cache[V] {
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]entry[V]),
	}
}

// Do returns the cached value for key, or runs fetch to compute it. The hit
// flag reports whether the value came from the cache. Concurrent calls with the
// same key share a single fetch; errors are returned to every waiter and never
// cached, so the next call retries.
func (c *Cache[V]) Do(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, bool, error) {
	if v, ok := c.lookup(key); ok {
		return v, true, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have stored the value between the lookup
		// above and acquiring the flight.
		if v, ok := c.lookup(key); ok {
			return outcome[V]{value: v, hit: true}, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return outcome[V]{value: v}, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}

	out := res.(outcome[V])
	return out.value, out.hit, nil
}

// Clear drops all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len reports the current entry count, expired entries included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return *new(V), false
	}
	if c.clock.Since(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return *new(V), false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
	if len(c.entries) <= c.maxEntries {
		return
	}

	now := c.clock.Now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey = k
				oldest = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}
