package cache

// linkState tracks whether a recency node is reachable from the shard's
// list. It is the Go equivalent of the sentinel "not-in-list" pointer
// value used by the C++ original this package is modeled on: a
// distinguished state lets find's late-promotion path recognize a node
// that was evicted between releasing the map lock and acquiring the list
// lock, without re-consulting the map.
type linkState uint8

const (
	linkDetached linkState = iota // allocated but not yet linked, or unlinked and not yet freed
	linkLinked                    // reachable by walking the list from head to tail
	linkFreed                     // unlinked and dropped; must never be re-linked
)

// node is an intrusive doubly linked list element exclusively owned by one
// shard. It stores the key/value alongside list links and the link state
// that the find/insert/erase races use to avoid re-linking a freed node.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links. head.next is LRU, tail.prev is MRU.
	prev *node[K, V]
	next *node[K, V]

	state linkState
}

// Key returns the node's key.
func (n *node[K, V]) Key() K { return n.key }

// Value returns a copy of the stored value. Callers must only read it
// while holding the shard's map lock; the shard copies out of this field
// before releasing that lock.
func (n *node[K, V]) Value() V { return n.val }
