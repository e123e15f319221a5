// FilePath: internal/querycache/querycache_test.go

package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "plants/plt_1", Key("plants", "plt_1"))
	assert.Equal(t, "plants", Key("plants"))
}

func TestGetOrFetchCachesWhileFresh(t *testing.T) {
	cache := New()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		data, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, "value", data)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrFetchRefetchesWhenStale(t *testing.T) {
	cache := New()
	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	data, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, data)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchZeroStaleTimeAlwaysRefetches(t *testing.T) {
	cache := New()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	for i := 0; i < 3; i++ {
		_, err := cache.GetOrFetch(context.Background(), "k", 0, fetch)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	cache := New()
	calls := 0
	boom := errors.New("boom")
	fetch := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, cache.Len())

	data, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", data)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchDeduplicatesConcurrentCallers(t *testing.T) {
	cache := New()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const workers = 8
	results := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}

	// Let every worker reach the cache before the fetch completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, data := range results {
		assert.Equal(t, "shared", data)
	}
}

func TestGetOrFetchJoinedCallerHonorsContext(t *testing.T) {
	cache := New()
	release := make(chan struct{})
	defer close(release)
	fetch := func(context.Context) (any, error) {
		<-release
		return "slow", nil
	}

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = cache.GetOrFetch(context.Background(), "k", time.Minute, fetch)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.GetOrFetch(ctx, "k", time.Minute, fetch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidateByPrefix(t *testing.T) {
	cache := New()
	cache.Set(Key("plants"), "list")
	cache.Set(Key("plants", "plt_1"), "one")
	cache.Set(Key("devices"), "devices")

	cache.InvalidateByPrefix("plants")

	_, ok := cache.Get(Key("plants"))
	assert.False(t, ok)
	_, ok = cache.Get(Key("plants", "plt_1"))
	assert.False(t, ok)
	_, ok = cache.Get(Key("devices"))
	assert.True(t, ok)
}

func TestInvalidateAndClear(t *testing.T) {
	cache := New()
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Invalidate("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Zero(t, cache.Len())
}

func TestSweepDropsOldEntries(t *testing.T) {
	cache := New()
	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	cache.Set("old", 1)
	clock = clock.Add(10 * time.Minute)
	cache.Set("fresh", 2)

	removed := cache.sweep(5 * time.Minute)
	assert.Equal(t, 1, removed)
	_, ok := cache.Get("fresh")
	assert.True(t, ok)
	_, ok = cache.Get("old")
	assert.False(t, ok)
}

func TestFetchTyped(t *testing.T) {
	cache := New()
	data, err := Fetch(context.Background(), cache, "k", time.Minute, func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, data)

	boom := errors.New("boom")
	_, err = Fetch(context.Background(), cache, "other", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFetchRejectsMismatchedCachedType(t *testing.T) {
	cache := New()
	cache.Set("k", "a string")

	// A key collision across types is a bug at the call site, not an
	// empty cache.
	value, err := Fetch(context.Background(), cache, "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache key")
	assert.Zero(t, value)
}
