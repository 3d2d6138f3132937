// Package cache provides a fast, generic, sharded in-memory LRU cache
// intended for embedding in high-throughput services as a shared
// in-process lookup table — e.g. a soft-block IP decision cache.
//
// Design
//
//   - Sharding: a Cache owns a fixed set of shards and routes each
//     operation to exactly one shard by hashing the key and isolating its
//     high-order bits (see internal/util.ShardIndex). Shards never
//     coordinate with each other; there is no global lock and no global
//     size accounting beyond a snapshot aggregation.
//
//   - Per-shard storage: each shard keeps a map[K]*node for O(1) lookup
//     and an intrusive MRU<->LRU doubly linked list for eviction order.
//     The map and the list are guarded by two separate locks.
//
//   - The read path never stalls: Find only ever try-locks the list's
//     mutex to promote a node to MRU. If it can't acquire the lock
//     immediately, it skips promotion and still returns the value — this
//     is "approximate LRU": ordering may lag under heavy concurrent Find
//     traffic, but Find itself is always a map lookup plus, at worst, a
//     failed TryLock.
//
//   - Eviction: Insert evicts the current LRU entry before linking a new
//     one once a shard is at capacity, with a single, non-looping
//     compare-and-swap correction for the rare race where concurrent
//     inserts outrun eviction. There is no retry loop — see shard.go.
//
// Non-goals
//
// This package deliberately does not implement persistence, distribution
// across processes or hosts, per-entry TTL, weighted/cost-based eviction,
// iteration, or atomic compound (read-modify-write-across-entries)
// operations. Sharing a single Cache instance across a process — so that
// independently loaded components see one set of shards — is a
// collaborator's concern; this package provides no such accessor.
//
// Basic usage
//
//	c, err := cache.New[string, string](1024, 0) // auto shard count
//	if err != nil {
//	    // capacity/shardCount was invalid
//	}
//
//	c.Insert("a", "1")
//
//	var h cache.Handle[string, string]
//	if c.Find(&h, "a") {
//	    _ = h.Value() // "1"
//	}
//
//	c.Erase("a")
//
// Exporting metrics (example Prometheus adapter)
//
//	m := prom.New(nil, "cachex", "demo", nil) // implements cache.Metrics
//	c, _ := cache.New[string, []byte](10_000, 0, cache.WithMetrics[string, []byte](m))
//
// Thread-safety
//
// Insert, Find, and Erase are safe for concurrent use by multiple
// goroutines, on the same Cache or the same shard. Clear is not safe
// against concurrent operations on the cache it clears.
package cache
