package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/cache"
)

func newCache(entries int, bytes int64) *cache.Cache {
	return cache.New(domain.CacheConfig{MaxEntries: entries, MaxBytes: bytes, Shards: 1}, nil)
}

func image(c domain.Color) domain.Output {
	return domain.Output{Image: domain.SolidImage(2, 2, c)}
}

// counting returns a compute func producing out and the number of calls made.
func counting(out domain.Output) (ports.ComputeFunc, *atomic.Int32) {
	calls := &atomic.Int32{}
	return func(context.Context) (domain.Output, error) {
		calls.Add(1)
		return out, nil
	}, calls
}

func put(t *testing.T, c *cache.Cache, key domain.Fingerprint, out domain.Output) {
	t.Helper()
	compute, _ := counting(out)
	h, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	h.Release()
}

func computes(t *testing.T, c *cache.Cache, key domain.Fingerprint) bool {
	t.Helper()
	compute, calls := counting(image(domain.Color{1, 1, 1, 1}))
	h, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	h.Release()
	return calls.Load() == 1
}

func TestCache_SingleFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := newCache(16, 1<<20)
		release := make(chan struct{})
		var calls atomic.Int32
		compute := func(context.Context) (domain.Output, error) {
			calls.Add(1)
			<-release
			return image(domain.Color{1, 0, 0, 1}), nil
		}

		const callers = 8
		results := make([]ports.Cached, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Go(func() {
				h, err := c.GetOrCompute(context.Background(), 42, compute)
				assert.NoError(t, err)
				results[i] = h
			})
		}

		synctest.Wait()
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, h := range results {
			require.NotNil(t, h)
			assert.Same(t, results[0].Output().Image, h.Output().Image)
			assert.Equal(t, domain.Fingerprint(42), h.Key())
		}
		assert.Equal(t, 1, c.Stats().Held)

		for _, h := range results {
			h.Release()
		}
		stats := c.Stats()
		assert.Equal(t, 0, stats.Held)
		assert.Equal(t, uint64(1), stats.Misses)
	})
}

func TestCache_FailuresAreNotStored(t *testing.T) {
	c := newCache(16, 1<<20)
	boom := errors.New("boom")
	var calls int
	compute := func(context.Context) (domain.Output, error) {
		calls++
		return domain.Output{}, boom
	}

	for range 2 {
		_, err := c.GetOrCompute(context.Background(), 7, compute)
		require.ErrorIs(t, err, boom)
	}

	assert.Equal(t, 2, calls)
	stats := c.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, uint64(2), stats.Failures)
}

func TestCache_LeastRecentlyUsedByCount(t *testing.T) {
	c := newCache(2, 1<<20)
	put(t, c, 1, image(domain.Color{1, 0, 0, 1}))
	put(t, c, 2, image(domain.Color{0, 1, 0, 1}))
	assert.False(t, computes(t, c, 1), "hit refreshes key 1")

	put(t, c, 3, image(domain.Color{0, 0, 1, 1}))

	assert.False(t, computes(t, c, 1))
	assert.False(t, computes(t, c, 3))
	assert.True(t, computes(t, c, 2), "key 2 was the least recently used")
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestCache_ByteBound(t *testing.T) {
	cost := image(domain.Color{}).Cost()
	c := newCache(100, 2*cost)

	put(t, c, 1, image(domain.Color{1, 0, 0, 1}))
	put(t, c, 2, image(domain.Color{0, 1, 0, 1}))
	put(t, c, 3, image(domain.Color{0, 0, 1, 1}))

	stats := c.Stats()
	assert.Equal(t, 2*cost, stats.Bytes)
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.True(t, computes(t, c, 1))
}

func TestCache_HeldEntriesSurviveEviction(t *testing.T) {
	c := newCache(1, 1<<20)
	compute, _ := counting(image(domain.Color{1, 0, 0, 1}))
	held, err := c.GetOrCompute(context.Background(), 1, compute)
	require.NoError(t, err)

	put(t, c, 2, image(domain.Color{0, 1, 0, 1}))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Held)

	held.Release()
	held.Release()
	assert.Equal(t, 0, c.Stats().Held)

	assert.False(t, computes(t, c, 1), "held entry was kept")
	assert.True(t, computes(t, c, 2), "unheld entry was evicted instead")
}

func TestCache_WaitersRetryAfterOwnerCancels(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := newCache(16, 1<<20)
		ownerCtx, cancel := context.WithCancel(context.Background())

		ownerErr := make(chan error, 1)
		go func() {
			_, err := c.GetOrCompute(ownerCtx, 9, func(ctx context.Context) (domain.Output, error) {
				<-ctx.Done()
				return domain.Output{}, ctx.Err()
			})
			ownerErr <- err
		}()
		synctest.Wait()

		compute, calls := counting(image(domain.Color{0, 0, 1, 1}))
		waiter := make(chan ports.Cached, 1)
		go func() {
			h, err := c.GetOrCompute(context.Background(), 9, compute)
			assert.NoError(t, err)
			waiter <- h
		}()
		synctest.Wait()
		assert.Zero(t, calls.Load(), "waiter joined the owner's flight")

		cancel()
		require.ErrorIs(t, <-ownerErr, context.Canceled)

		h := <-waiter
		require.NotNil(t, h)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, domain.Color{0, 0, 1, 1}, h.Output().Image.At(0, 0))
		h.Release()
	})
}

func TestCache_CancelledCallerReturns(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := newCache(16, 1<<20)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.GetOrCompute(ctx, 3, func(context.Context) (domain.Output, error) {
			t.Error("compute must not run for a cancelled caller")
			return domain.Output{}, nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCache_IdempotentUnderEviction(t *testing.T) {
	c := newCache(16, 1<<20)
	render := func(context.Context) (domain.Output, error) {
		return image(domain.Color{0.25, 0.5, 0.75, 1}), nil
	}

	first, err := c.GetOrCompute(context.Background(), 5, render)
	require.NoError(t, err)
	original := first.Output().Image.Pix
	first.Release()

	c.Purge()
	assert.Zero(t, c.Stats().Entries)

	again, err := c.GetOrCompute(context.Background(), 5, render)
	require.NoError(t, err)
	defer again.Release()
	assert.Equal(t, original, again.Output().Image.Pix)
}

func TestCache_Resize(t *testing.T) {
	c := newCache(8, 1<<20)
	for key := range domain.Fingerprint(6) {
		put(t, c, key+1, image(domain.Color{}))
	}
	require.Equal(t, 6, c.Stats().Entries)

	c.Resize(2, 1<<20)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, uint64(4), stats.Evictions)
	assert.False(t, computes(t, c, 6))
	assert.True(t, computes(t, c, 1))
}

func TestCache_Sharded(t *testing.T) {
	c := cache.New(domain.CacheConfig{MaxEntries: 64, MaxBytes: 1 << 20, Shards: 4}, nil)
	for key := range domain.Fingerprint(16) {
		put(t, c, key, image(domain.Color{}))
	}
	assert.Equal(t, 16, c.Stats().Entries)
	for key := range domain.Fingerprint(16) {
		assert.False(t, computes(t, c, key))
	}
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			return m.GetCounter().GetValue()
		case dto.MetricType_GAUGE:
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCache_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := cache.NewMetrics(reg)
	require.NoError(t, err)
	c := cache.New(domain.CacheConfig{MaxEntries: 1, MaxBytes: 1 << 20, Shards: 1}, metrics)

	put(t, c, 1, image(domain.Color{}))
	put(t, c, 1, image(domain.Color{}))
	put(t, c, 2, image(domain.Color{}))

	assert.InDelta(t, 1, metricValue(t, reg, "delta_cache_hits_total"), 0)
	assert.InDelta(t, 2, metricValue(t, reg, "delta_cache_misses_total"), 0)
	assert.InDelta(t, 1, metricValue(t, reg, "delta_cache_evictions_total"), 0)
	assert.InDelta(t, 1, metricValue(t, reg, "delta_cache_entries"), 0)
	assert.InDelta(t, float64(image(domain.Color{}).Cost()), metricValue(t, reg, "delta_cache_bytes"), 0)

	_, err = cache.NewMetrics(reg)
	require.Error(t, err, "collectors register once per registry")
}
