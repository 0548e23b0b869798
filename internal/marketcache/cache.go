// Package marketcache memoizes market data calls. Each entry is keyed by a
// deterministic request signature and served only within its freshness
// window; concurrent requests for the same key share a single fetch.
package marketcache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Key builds a deterministic signature from an operation kind and its
// parameters, e.g. Key("priceSeries", "bitcoin", 7) -> "priceSeries:bitcoin:7".
func Key(op string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// call is an in-flight fetch; done closes once value and err are set.
type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Cache is a keyed, time-bounded memoization layer with at most one
// in-flight fetch per key. Failed fetches are not cached.
type Cache[V any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	entries  map[string]entry[V]
	inflight map[string]*call[V]
}

// New creates a cache whose entries stay fresh for ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:      ttl,
		clock:    time.Now,
		entries:  make(map[string]entry[V]),
		inflight: make(map[string]*call[V]),
	}
}

// GetOrFetch returns the cached value for key when it is still fresh.
// Otherwise it either joins an in-flight fetch for the same key or runs
// fetch itself and broadcasts the result to any latecomers. A joiner whose
// context ends first gives up without cancelling the shared fetch.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.clock().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}

	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.value, cl.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	cl := &call[V]{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	value, err := fetch(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.entries[key] = entry[V]{value: value, expiresAt: c.clock().Add(c.ttl)}
	}
	c.mu.Unlock()

	cl.value, cl.err = value, err
	close(cl.done)
	return value, err
}

// Peek returns the cached value without fetching. Stale entries miss.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.clock().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Invalidate drops the entry for key, forcing the next call to fetch.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// PurgeExpired removes stale entries and returns how many were dropped.
func (c *Cache[V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	dropped := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of stored entries, fresh or stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
