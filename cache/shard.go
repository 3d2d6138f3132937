package cache

import (
	"sync"
	"sync/atomic"

	"github.com/sointu-labs/shardlru/internal/util"
)

// shard is one independent, thread-safe LRU partition: a concurrent
// key->node map and an intrusive MRU/LRU doubly linked list, each guarded
// by its own lock. Splitting the two locks (instead of one lock covering
// both) is what lets find never block: it only ever try-locks listMu.
type shard[K comparable, V any] struct {
	// ---- map state, guarded by mapMu ----
	mapMu   sync.RWMutex
	entries map[K]*node[K, V]

	// ---- list state, guarded by listMu only ----
	listMu sync.Mutex
	head   *node[K, V] // sentinel; head.next is LRU
	tail   *node[K, V] // sentinel; tail.prev is MRU

	size atomic.Int64
	cap  int

	onEvict func(k K, v V, reason EvictReason)
	metrics Metrics

	// ---- hot counters, padded to avoid false sharing across shards ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// newShard builds a shard with head<->tail sentinels and an empty map
// sized to capacity.
func newShard[K comparable, V any](capacity int, onEvict func(K, V, EvictReason), metrics Metrics) *shard[K, V] {
	head := &node[K, V]{}
	tail := &node[K, V]{}
	head.next = tail
	tail.prev = head

	return &shard[K, V]{
		entries: make(map[K]*node[K, V], capacity),
		head:    head,
		tail:    tail,
		cap:     capacity,
		onEvict: onEvict,
		metrics: metrics,
	}
}

// insert adds a new entry as MRU. It returns false without side effects
// if k is already present.
func (s *shard[K, V]) insert(k K, v V) (bool, error) {
	n := &node[K, V]{key: k, val: v}

	s.mapMu.Lock()
	if _, exists := s.entries[k]; exists {
		s.mapMu.Unlock()
		return false, nil
	}
	s.entries[k] = n
	s.mapMu.Unlock()

	size := s.size.Load()
	popped := false
	if size >= int64(s.cap) {
		s.popFront()
		popped = true
	}

	s.listMu.Lock()
	s.appendTailLocked(n)
	s.listMu.Unlock()

	// If not popped, atomically increment size and recover the prior
	// (pre-increment) value, emulating the original's current_size_++.
	if !popped {
		size = s.size.Add(1) - 1
	}

	// If the prior value already exceeded capacity — concurrent inserts
	// outran eviction — attempt one bounded correction. A single CAS, no
	// retry loop: occasionally fires, never spins.
	if size > int64(s.cap) {
		if s.size.CompareAndSwap(size, size-1) {
			s.popFront()
		}
	}

	s.metrics.Size(int(s.size.Load()))
	return true, nil
}

// find looks up k, copies its value into h, and opportunistically
// promotes the node to MRU. It never blocks on listMu and never fails.
func (s *shard[K, V]) find(h *Handle[K, V], k K) bool {
	s.mapMu.RLock()
	n, ok := s.entries[k]
	if !ok {
		s.mapMu.RUnlock()
		h.Release()
		s.misses.Add(1)
		s.metrics.Miss()
		return false
	}
	v := n.val
	s.mapMu.RUnlock()
	h.set(v)

	if s.listMu.TryLock() {
		if n.state == linkLinked {
			s.unlinkLocked(n)
			s.appendTailLocked(n)
		}
		s.listMu.Unlock()
	}

	s.hits.Add(1)
	s.metrics.Hit()
	return true
}

// erase removes k if present. Returns 1 if it was present, 0 otherwise.
func (s *shard[K, V]) erase(k K) int {
	s.mapMu.Lock()
	n, ok := s.entries[k]
	if !ok {
		s.mapMu.Unlock()
		return 0
	}
	delete(s.entries, k)
	s.mapMu.Unlock()

	s.listMu.Lock()
	if n.state == linkLinked {
		s.unlinkLocked(n)
	}
	n.state = linkFreed
	s.listMu.Unlock()

	// erase's decrement is unconditional; unlike insert, no CAS
	// correction is attempted here (see DESIGN.md's Open Question note).
	s.size.Add(-1)

	s.evicts.Add(1)
	s.metrics.Evict(EvictErase)
	if s.onEvict != nil {
		s.onEvict(n.key, n.val, EvictErase)
	}
	s.metrics.Size(int(s.size.Load()))
	return 1
}

// clear drops every entry. It is not safe against concurrent operations
// on the same shard.
func (s *shard[K, V]) clear() {
	s.mapMu.Lock()
	s.entries = make(map[K]*node[K, V], len(s.entries))
	s.mapMu.Unlock()

	s.listMu.Lock()
	n := s.head.next
	for n != s.tail {
		next := n.next
		n.prev, n.next = nil, nil
		n.state = linkFreed
		n = next
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	s.listMu.Unlock()

	s.size.Store(0)
	s.metrics.Size(0)
}

func (s *shard[K, V]) sizeOf() int64   { return s.size.Load() }
func (s *shard[K, V]) capacityOf() int { return s.cap }

// popFront evicts the current LRU entry, if any. It does not itself
// adjust size: callers either account for it against an insert that is
// about to add one (net zero), or via the CAS-driven correction in
// insert.
func (s *shard[K, V]) popFront() {
	s.listMu.Lock()
	n := s.head.next
	if n == s.tail {
		s.listMu.Unlock()
		return
	}
	s.unlinkLocked(n)
	n.state = linkFreed
	key := n.key
	s.listMu.Unlock()

	s.mapMu.Lock()
	delete(s.entries, key)
	s.mapMu.Unlock()

	s.evicts.Add(1)
	s.metrics.Evict(EvictLRU)
	if s.onEvict != nil {
		s.onEvict(n.key, n.val, EvictLRU)
	}
}

// appendTailLocked links n at the MRU end. Caller must hold listMu.
func (s *shard[K, V]) appendTailLocked(n *node[K, V]) {
	prev := s.tail.prev
	n.prev = prev
	n.next = s.tail
	prev.next = n
	s.tail.prev = n
	n.state = linkLinked
}

// unlinkLocked detaches n from the list. Caller must hold listMu.
func (s *shard[K, V]) unlinkLocked(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
	n.state = linkDetached
}
