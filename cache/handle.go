package cache

// Handle is a scoped read-reference returned by Find. It carries a
// byte-for-byte copy of the value made at lookup time, so the caller's
// view of the value is decoupled from the shard's internal map locking —
// the map lock is released before Find returns, not held for the
// handle's lifetime.
//
// A Handle must not be copied; pass it by pointer and either let it go
// out of scope or call Release explicitly. It must not outlive the shard
// (or Cache) that produced it.
type Handle[K comparable, V any] struct {
	value V
	ok    bool
}

// Value returns the value copy held by the handle. Calling it on an empty
// handle returns the zero value of V.
func (h *Handle[K, V]) Value() V { return h.value }

// Empty reports whether the handle holds no value, i.e. the Find call
// that produced it was a miss.
func (h *Handle[K, V]) Empty() bool { return !h.ok }

// Release drops the handle's value copy early. It is always safe to call,
// including on an already-released or empty handle, and is never required
// for correctness — it exists so callers can free large values sooner
// than the handle's natural scope would.
func (h *Handle[K, V]) Release() {
	var zero V
	h.value = zero
	h.ok = false
}

func (h *Handle[K, V]) set(v V) {
	h.value = v
	h.ok = true
}
