package util

import "runtime"

// ReasonableShardCount returns the runtime's parallelism estimate, clamped
// to at least 1. This is the default shard count substituted whenever a
// caller asks for shardCount == 0 ("auto").
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	return p
}

// ShardIndex isolates the most-randomized high-order bits of a 64-bit hash
// and reduces them modulo shards, per the "high-bit selection" rule:
// shift the hash right by (word_bits - 16) to isolate the top 16 bits, then
// take the result modulo the shard count. Many hashers concentrate entropy
// in the high bits, so this tends to distribute keys more evenly than a
// plain low-bit mask when the shard count isn't a power of two.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	const wordBits = 64
	const highBits = 16
	h := hash >> (wordBits - highBits)
	return int(h % uint64(shards))
}
