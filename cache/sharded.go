// Package cache provides a concurrency-safe sharded cache whose GetOrCreate
// runs the creation function at most once per resident key.
//
// The renderer uses it for glyph outlines, where every (font, size, rune)
// key must be processed at most once for the lifetime of a Context. Such
// caches are built with Unbounded capacity so that nothing is evicted and
// the guarantee holds process-wide.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of shards. It must be a power of two.
	DefaultShardCount = 16

	// DefaultCapacity is the per-shard capacity used when 0 is requested.
	DefaultCapacity = 256

	// Unbounded disables eviction.
	Unbounded = -1

	shardMask = DefaultShardCount - 1
)

// Hasher computes the shard-selection hash of a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of s.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // never fails
	return h.Sum64()
}

// Uint64Hasher is the identity hash.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// ShardedCache is a sharded, optionally bounded LRU cache.
//
// Entries are published before their value is computed; concurrent callers
// of GetOrCreate for the same key wait for the first caller's result instead
// of computing it again. Creation runs outside the shard lock, so a slow
// creation only blocks callers asking for the same key.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	lru     *lruList[K]
}

type entry[K comparable, V any] struct {
	ready chan struct{} // closed once value is set
	value V
	node  *lruNode[K]
}

func newReadyEntry[K comparable, V any](value V, node *lruNode[K]) *entry[K, V] {
	e := &entry[K, V]{ready: make(chan struct{}), value: value, node: node}
	close(e.ready)
	return e
}

func (e *entry[K, V]) wait() V {
	<-e.ready
	return e.value
}

// NewSharded creates a cache holding up to capacity entries per shard.
//
// A capacity of 0 selects DefaultCapacity; a negative capacity (Unbounded)
// disables eviction entirely.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	switch {
	case capacity == 0:
		capacity = DefaultCapacity
	case capacity < 0:
		capacity = Unbounded
	}
	c := &ShardedCache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*entry[K, V]),
			lru:     newLRUList[K](),
		}
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// evictLocked makes room for one more entry. The shard lock must be held.
func (c *ShardedCache[K, V]) evictLocked(s *shard[K, V]) {
	if c.capacity == Unbounded {
		return
	}
	for s.lru.Len() >= c.capacity {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			return
		}
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
}

// Get returns the value for key. If the value is still being created by a
// concurrent GetOrCreate, Get waits for it.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.lru.MoveToFront(e.node)
	}
	s.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.wait(), true
}

// Set stores value under key, replacing any previous value.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.lru.MoveToFront(old.node)
		s.entries[key] = newReadyEntry(value, old.node)
		return
	}
	c.evictLocked(s)
	s.entries[key] = newReadyEntry(value, s.lru.PushFront(key))
}

// GetOrCreate returns the value for key, calling create to produce it if the
// key is not resident. create is called at most once per resident key even
// under concurrent access.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.lru.MoveToFront(e.node)
		s.mu.Unlock()
		c.hits.Add(1)
		return e.wait()
	}

	c.misses.Add(1)
	c.evictLocked(s)
	e := &entry[K, V]{ready: make(chan struct{})}
	e.node = s.lru.PushFront(key)
	s.entries[key] = e
	s.mu.Unlock()

	defer close(e.ready)
	e.value = create()
	return e.value
}

// Delete removes key and reports whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	return true
}

// Clear removes all entries.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the number of resident entries.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Capacity returns the per-shard capacity, or Unbounded.
func (c *ShardedCache[K, V]) Capacity() int {
	return c.capacity
}

// TotalCapacity returns the capacity across all shards, or Unbounded.
func (c *ShardedCache[K, V]) TotalCapacity() int {
	if c.capacity == Unbounded {
		return Unbounded
	}
	return c.capacity * DefaultShardCount
}

// ShardLen returns the number of entries in each shard.
func (c *ShardedCache[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, s := range c.shards {
		s.mu.Lock()
		lens[i] = len(s.entries)
		s.mu.Unlock()
	}
	return lens
}

// Stats returns current counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.TotalCapacity(),
		Hits:          hits,
		Misses:        misses,
		HitRate:       rate,
		Evictions:     c.evictions.Load(),
	}
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
