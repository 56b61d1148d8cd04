// ABOUTME: Thread-safe TTL cache for catalog query results with request deduplication
// ABOUTME: Invalidation bumps a per-key generation so in-flight fetches cannot repopulate stale data

package fetchcache

import (
	"container/list"
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/2389/bookdesk/internal/metrics"
)

// markerRetention is how long an invalidation marker outlives its key.
const markerRetention = 5 * time.Minute

// FetchFunc loads the value for a key from the catalog service.
type FetchFunc[V any] func(ctx context.Context) (V, error)

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
	element  *list.Element
}

type generation struct {
	n  uint64
	at time.Time
}

// Cache is a TTL cache keyed by query identity.
// Uses a doubly-linked list to maintain insertion order for O(1) eviction.
type Cache[V any] struct {
	name    string
	mu      sync.Mutex
	entries map[string]*cacheEntry[V]
	order   *list.List // keys in insertion order (oldest at front)
	gens    map[string]generation
	pending map[string]int // keys with a fetch in progress
	ttl     time.Duration
	maxSize int
	flights singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
	done    chan struct{}
	closed  bool
}

// New creates a cache with the given freshness window and maximum size.
// A background goroutine periodically removes expired entries.
func New[V any](name string, ttl time.Duration, maxSize int) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &Cache[V]{
		name:    name,
		entries: make(map[string]*cacheEntry[V]),
		order:   list.New(),
		gens:    make(map[string]generation),
		pending: make(map[string]int),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		logger:  slog.Default().With("component", "fetchcache", "cache", name),
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the fresh cached value for key, or calls fetch and caches its result.
// Concurrent Gets for the same key share one fetch. The shared fetch is detached
// from any single caller's cancellation; each caller still stops waiting when its
// own ctx is done.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.freshLocked(entry) {
		value := entry.value
		c.mu.Unlock()
		metrics.FetchCacheLookups.WithLabelValues(c.name, "hit").Inc()
		return value, nil
	}
	gen := c.gens[key].n
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(flightKey(key, gen), func() (any, error) {
		c.trackPending(key, 1)
		defer c.trackPending(key, -1)

		value, err := fetch(fetchCtx)
		if err != nil {
			return value, err
		}
		c.store(key, gen, value)
		return value, nil
	})

	select {
	case res := <-ch:
		result := "miss"
		if res.Shared {
			result = "shared"
		}
		metrics.FetchCacheLookups.WithLabelValues(c.name, result).Inc()
		value, _ := res.Val.(V)
		return value, res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Peek returns the cached value for key if it is still fresh.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !c.freshLocked(entry) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Invalidate drops key so the next Get refetches it.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key)
	metrics.FetchCacheInvalidations.WithLabelValues(c.name).Inc()
	c.logger.Debug("invalidated", "key", key)
}

// InvalidatePrefix drops every key starting with prefix, including keys that
// are only being fetched right now.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make(map[string]struct{}, len(c.entries)+len(c.gens)+len(c.pending))
	for key := range c.entries {
		keys[key] = struct{}{}
	}
	for key := range c.gens {
		keys[key] = struct{}{}
	}
	for key := range c.pending {
		keys[key] = struct{}{}
	}
	for key := range keys {
		if strings.HasPrefix(key, prefix) {
			c.invalidateLocked(key)
		}
	}
	metrics.FetchCacheInvalidations.WithLabelValues(c.name).Inc()
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// invalidateLocked removes key and bumps its generation. Must be called with mu held.
func (c *Cache[V]) invalidateLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.order.Remove(entry.element)
		delete(c.entries, key)
	}
	g := c.gens[key]
	c.gens[key] = generation{n: g.n + 1, at: c.now()}
}

func (c *Cache[V]) trackPending(key string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.pending[key] + delta; n > 0 {
		c.pending[key] = n
	} else {
		delete(c.pending, key)
	}
}

// store records a fetched value unless key was invalidated after the fetch began.
func (c *Cache[V]) store(key string, gen uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key].n != gen {
		c.logger.Debug("discarding result fetched before invalidation", "key", key)
		return
	}

	if entry, exists := c.entries[key]; exists {
		entry.value = value
		entry.storedAt = c.now()
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &cacheEntry[V]{
		value:    value,
		storedAt: c.now(),
		element:  elem,
	}
}

func (c *Cache[V]) freshLocked(entry *cacheEntry[V]) bool {
	return c.now().Sub(entry.storedAt) < c.ttl
}

// evictOldest removes the oldest entry from the cache.
// Must be called with mu held. O(1) operation using linked list.
func (c *Cache[V]) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes expired entries and old invalidation markers.
func (c *Cache[V]) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			c.order.Remove(entry.element)
			delete(c.entries, key)
		}
	}
	for key, g := range c.gens {
		_, cached := c.entries[key]
		_, fetching := c.pending[key]
		if !cached && !fetching && now.Sub(g.at) > markerRetention {
			delete(c.gens, key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

func flightKey(key string, gen uint64) string {
	return key + "#" + strconv.FormatUint(gen, 10)
}
