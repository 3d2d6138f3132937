package cache

import (
	"github.com/sointu-labs/shardlru/internal/util"
)

// Cache is a sharded, size-bounded, approximately-LRU cache. It owns a
// fixed set of independent shards and routes each operation to exactly
// one shard by hashing the key, per K's mapping being deterministic for
// the life of the cache.
//
// All methods are safe for concurrent use by multiple goroutines. Clear
// is the one exception: it is not safe against concurrent operations on
// the cache it clears.
type Cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
}

// New constructs a Cache with the given total capacity, split evenly
// across shardCount shards (remainder added to shard 0, so the sum of
// shard capacities equals capacity exactly). shardCount == 0 substitutes
// the runtime's parallelism estimate.
//
// capacity must be > 0; shardCount must be >= 0; and capacity must be at
// least the resolved shard count, since every shard needs a strictly
// positive capacity and there is no smaller unit to give it than 1.
func New[K comparable, V any](capacity, shardCount int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, errCapacity
	}
	if shardCount < 0 {
		return nil, errShardCount
	}

	n := shardCount
	if n == 0 {
		n = util.ReasonableShardCount()
	}
	if capacity < n {
		return nil, errCapacityTooSmall
	}

	cfg := config[K, V]{
		metrics: NoopMetrics{},
		hasher:  util.Hash[K],
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	perShard := capacity / n
	remainder := capacity % n

	shards := make([]*shard[K, V], n)
	for i := 0; i < n; i++ {
		shardCap := perShard
		if i == 0 {
			shardCap += remainder
		}
		shards[i] = newShard[K, V](shardCap, cfg.onEvict, cfg.metrics)
	}

	return &Cache[K, V]{shards: shards, hash: cfg.hasher}, nil
}

// Insert adds k->v only if k is absent. It returns false (and makes no
// changes) if the key already exists; update semantics belong to a
// read-modify-write compound operation, which is out of scope.
func (c *Cache[K, V]) Insert(k K, v V) (bool, error) {
	return c.shardFor(k).insert(k, v)
}

// Find looks up k. On a hit, h holds a copy of the stored value and the
// node is opportunistically promoted to MRU; on a miss, h is empty.
// Find never blocks waiting on a shard's list lock.
func (c *Cache[K, V]) Find(h *Handle[K, V], k K) bool {
	return c.shardFor(k).find(h, k)
}

// Erase removes k if present, returning 1 if it was, 0 otherwise.
func (c *Cache[K, V]) Erase(k K) int {
	return c.shardFor(k).erase(k)
}

// Clear empties every shard, sequentially. It is not safe against
// concurrent operations on this cache.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.clear()
	}
}

// Size returns the total number of resident entries across all shards.
// It is a non-atomic aggregation: with concurrent writers, it may observe
// any interleaving of their updates.
func (c *Cache[K, V]) Size() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.sizeOf()
	}
	return total
}

// Capacity returns the sum of all shard capacities, i.e. the capacity
// passed to New.
func (c *Cache[K, V]) Capacity() int {
	total := 0
	for _, s := range c.shards {
		total += s.capacityOf()
	}
	return total
}

// SizeShard returns the resident entry count of shard idx, or 0 if idx is
// out of range.
func (c *Cache[K, V]) SizeShard(idx int) int64 {
	if idx < 0 || idx >= len(c.shards) {
		return 0
	}
	return c.shards[idx].sizeOf()
}

// CapacityShard returns the capacity of shard idx, or 0 if idx is out of
// range.
func (c *Cache[K, V]) CapacityShard(idx int) int {
	if idx < 0 || idx >= len(c.shards) {
		return 0
	}
	return c.shards[idx].capacityOf()
}

// ShardCount returns the fixed number of shards this cache was built
// with.
func (c *Cache[K, V]) ShardCount() int {
	return len(c.shards)
}

// shardFor selects a shard by hashing k and isolating its high-order
// bits (see internal/util.ShardIndex): many hashers concentrate entropy
// there, and the mapping is deterministic for a given key for the life
// of the cache, as required by the single-shard-per-key invariant.
func (c *Cache[K, V]) shardFor(k K) *shard[K, V] {
	h := c.hash(k)
	idx := util.ShardIndex(h, len(c.shards))
	return c.shards[idx]
}
