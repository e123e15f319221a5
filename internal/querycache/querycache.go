// FilePath: internal/querycache/querycache.go
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/errors"
)

// Cache is a small key-value cache for request results: each key maps to
// (data, fetch timestamp, in-flight marker). Entries are served without a
// refetch while younger than the caller's stale time, concurrent fetches
// for the same key are deduplicated to a single in-flight request, and
// mutations invalidate dependent keys by prefix. Errors are never cached.
//
// No ordering is guaranteed across different keys.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]*inflightFetch
	now      func() time.Time
}

type entry struct {
	data      any
	fetchedAt time.Time
}

type inflightFetch struct {
	done chan struct{}
	data any
	err  error
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		inflight: make(map[string]*inflightFetch),
		now:      time.Now,
	}
}

// Key joins key segments into a hierarchical cache key, so that
// Key("plants", id) is invalidated by the "plants" prefix.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// GetOrFetch returns the cached value for key when it is younger than
// staleTime, joins an in-flight fetch for the same key when one exists,
// and otherwise runs fetch and caches its result. A staleTime of zero
// always refetches but still deduplicates concurrent callers.
func (c *Cache) GetOrFetch(ctx context.Context, key string, staleTime time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok && staleTime > 0 && c.now().Sub(e.fetchedAt) < staleTime {
		c.mu.Unlock()
		return e.data, nil
	}

	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.data, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &inflightFetch{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	data, err := fetch(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.entries[key] = entry{data: data, fetchedAt: c.now()}
	}
	c.mu.Unlock()

	f.data = data
	f.err = err
	close(f.done)

	return data, err
}

// Set primes the cache with a known-fresh value, e.g. the response of a
// successful update.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, fetchedAt: c.now()}
}

// Get returns the cached value regardless of age.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateByPrefix drops every key sharing the given prefix, so that
// subsequent reads refetch.
func (c *Cache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear drops all entries, e.g. on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper periodically drops entries older than maxAge until ctx is
// cancelled. Keeps long-running processes from accumulating dead keys.
func (c *Cache) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := c.sweep(maxAge)
				if removed > 0 {
					nuts.L.Debugf("[QueryCache] Swept %d expired entries", removed)
				}
			}
		}
	}()
}

func (c *Cache) sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-maxAge)
	removed := 0
	for key, e := range c.entries {
		if e.fetchedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Fetch is the typed wrapper around Cache.GetOrFetch. A cached value of
// the wrong type means two call sites share a key; that is surfaced as an
// error rather than passed off as missing data.
func Fetch[T any](ctx context.Context, c *Cache, key string, staleTime time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	data, err := c.GetOrFetch(ctx, key, staleTime, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, ok := data.(T)
	if !ok {
		var zero T
		return zero, errors.NewInternalError(fmt.Sprintf("cache key %q holds %T, not %T", key, data, zero), nil)
	}
	return value, nil
}
