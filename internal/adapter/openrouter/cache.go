package openrouter

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. City name to
// coordinates mappings never go stale, so entries live until evicted; only
// successful resolutions are cached so transient failures can be retried.
type CachedGeocoder struct {
	inner domain.Geocoder
	cache *lruCache
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedGeocoder) Resolve(ctx context.Context, city string) (domain.Coordinates, error) {
	key := normalizeCity(city)
	if coords, ok := c.cache.get(key); ok {
		return coords, nil
	}
	coords, err := c.inner.Resolve(ctx, city)
	if err != nil {
		return coords, err
	}
	c.cache.put(key, coords)
	return coords, nil
}

// normalizeCity folds case and collapses whitespace so "new  york" and
// "New York" share a cache entry.
func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// lruCache is a thread-safe LRU of city keys to coordinates.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
}

type lruEntry struct {
	key    string
	coords domain.Coordinates
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *lruCache) get(key string) (domain.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Coordinates{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).coords, true
}

func (c *lruCache) put(key string, coords domain.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry).coords = coords
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&lruEntry{key: key, coords: coords})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).key)
	}
}
