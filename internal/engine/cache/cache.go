// Package cache implements the shared evaluation result cache.
package cache

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries   int
	Bytes     int64
	Held      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Failures  uint64
}

// Cache is a sharded, bounded, single-flight result cache keyed by
// evaluation fingerprints. Each shard has its own lock and its own
// singleflight group, so unrelated keys never contend.
//
// Entries with live handles are never evicted. Failed computations are
// never stored.
type Cache struct {
	shards  []*shard
	metrics *Metrics

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	failures  atomic.Uint64
}

var _ ports.ResultCache = (*Cache)(nil)

type shard struct {
	c     *Cache
	group singleflight.Group

	mu         sync.Mutex
	lru        *simplelru.LRU[domain.Fingerprint, *entry]
	bytes      int64
	held       int
	maxEntries int
	maxBytes   int64
}

type entry struct {
	key  domain.Fingerprint
	out  domain.Output
	cost int64
	refs int
	// detached entries have been evicted or purged while held.
	detached bool
}

// abandoned marks a computation whose owner cancelled it. Waiters sharing the
// flight retry with their own context.
type abandoned struct {
	err error
}

func (a *abandoned) Error() string { return a.err.Error() }
func (a *abandoned) Unwrap() error { return a.err }

// New creates a cache bounded by cfg. metrics may be nil.
func New(cfg domain.CacheConfig, metrics *Metrics) *Cache {
	n := max(cfg.Shards, 1)
	c := &Cache{shards: make([]*shard, n), metrics: metrics}
	for i := range c.shards {
		// Bounds are enforced by the shard so held entries survive; the LRU
		// only tracks recency.
		lru, _ := simplelru.NewLRU[domain.Fingerprint, *entry](math.MaxInt32, nil)
		c.shards[i] = &shard{c: c, lru: lru}
	}
	c.Resize(cfg.MaxEntries, cfg.MaxBytes)
	return c
}

func (c *Cache) shardFor(key domain.Fingerprint) *shard {
	return c.shards[uint64(key)%uint64(len(c.shards))]
}

// GetOrCompute returns the cached result for key, computing it at most once
// across concurrent callers. The returned handle must be released.
func (c *Cache) GetOrCompute(ctx context.Context, key domain.Fingerprint, compute ports.ComputeFunc) (ports.Cached, error) {
	sh := c.shardFor(key)
	if h, ok := sh.acquire(key); ok {
		c.hits.Add(1)
		c.metrics.hit()
		return h, nil
	}

	flightKey := strconv.FormatUint(uint64(key), 16)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch := sh.group.DoChan(flightKey, func() (any, error) {
			if e, ok := sh.lookup(key); ok {
				c.hits.Add(1)
				c.metrics.hit()
				return e, nil
			}
			c.misses.Add(1)
			c.metrics.miss()

			out, err := compute(ctx)
			if err != nil {
				c.failures.Add(1)
				c.metrics.failure()
				if ctx.Err() != nil {
					return nil, &abandoned{err: err}
				}
				return nil, err
			}
			return sh.insert(key, out), nil
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				var a *abandoned
				if errors.As(res.Err, &a) && ctx.Err() == nil {
					continue
				}
				return nil, res.Err
			}
			return sh.hold(res.Val.(*entry)), nil
		}
	}
}

// Resize changes the bounds and evicts down to them.
func (c *Cache) Resize(maxEntries int, maxBytes int64) {
	n := len(c.shards)
	perEntries := max((maxEntries+n-1)/n, 1)
	perBytes := max((maxBytes+int64(n)-1)/int64(n), 1)
	for _, sh := range c.shards {
		sh.mu.Lock()
		sh.maxEntries = perEntries
		sh.maxBytes = perBytes
		sh.evictLocked(0)
		sh.mu.Unlock()
	}
	c.publish()
}

// Purge drops every entry that is not held.
func (c *Cache) Purge() {
	for _, sh := range c.shards {
		sh.mu.Lock()
		for _, key := range sh.lru.Keys() {
			if e, _ := sh.lru.Peek(key); e.refs == 0 {
				sh.removeLocked(e)
			}
		}
		sh.mu.Unlock()
	}
	c.publish()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Failures:  c.failures.Load(),
	}
	for _, sh := range c.shards {
		sh.mu.Lock()
		s.Entries += sh.lru.Len()
		s.Bytes += sh.bytes
		s.Held += sh.held
		sh.mu.Unlock()
	}
	return s
}

func (c *Cache) publish() {
	if c.metrics == nil {
		return
	}
	s := c.Stats()
	c.metrics.entries.Set(float64(s.Entries))
	c.metrics.bytes.Set(float64(s.Bytes))
}

// acquire returns a handle on a stored entry and marks it recently used.
func (sh *shard) acquire(key domain.Fingerprint) (*handle, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.lru.Get(key)
	if !ok {
		return nil, false
	}
	return sh.holdLocked(e), true
}

func (sh *shard) lookup(key domain.Fingerprint) (*entry, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lru.Get(key)
}

func (sh *shard) insert(key domain.Fingerprint, out domain.Output) *entry {
	e := &entry{key: key, out: out, cost: out.Cost()}

	sh.mu.Lock()
	if old, ok := sh.lru.Peek(key); ok {
		sh.removeLocked(old)
	}
	sh.lru.Add(key, e)
	sh.bytes += e.cost
	sh.evictLocked(key)
	sh.mu.Unlock()

	sh.c.publish()
	return e
}

func (sh *shard) hold(e *entry) *handle {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.holdLocked(e)
}

func (sh *shard) holdLocked(e *entry) *handle {
	if !e.detached {
		if e.refs == 0 {
			sh.held++
		}
		e.refs++
	}
	return &handle{sh: sh, e: e}
}

func (sh *shard) release(e *entry) {
	sh.mu.Lock()
	if !e.detached {
		e.refs--
		if e.refs == 0 {
			sh.held--
			sh.evictLocked(0)
		}
	}
	sh.mu.Unlock()
	sh.c.publish()
}

// evictLocked removes least recently used unheld entries until the shard is
// within bounds. keep is never evicted; it is the entry just inserted.
func (sh *shard) evictLocked(keep domain.Fingerprint) {
	if sh.within() {
		return
	}
	for _, key := range sh.lru.Keys() {
		if sh.within() {
			return
		}
		if key == keep {
			continue
		}
		if e, _ := sh.lru.Peek(key); e.refs == 0 {
			sh.removeLocked(e)
			sh.c.evictions.Add(1)
			sh.c.metrics.eviction()
		}
	}
}

func (sh *shard) within() bool {
	return sh.lru.Len() <= sh.maxEntries && sh.bytes <= sh.maxBytes
}

func (sh *shard) removeLocked(e *entry) {
	sh.lru.Remove(e.key)
	sh.bytes -= e.cost
	if e.refs > 0 {
		sh.held--
	}
	e.detached = true
}

// handle is a reference-counted hold on a cache entry.
type handle struct {
	sh   *shard
	e    *entry
	once sync.Once
}

func (h *handle) Key() domain.Fingerprint { return h.e.key }

func (h *handle) Output() domain.Output { return h.e.out }

// Release drops the hold. It is safe to call more than once.
func (h *handle) Release() {
	h.once.Do(func() { h.sh.release(h.e) })
}
