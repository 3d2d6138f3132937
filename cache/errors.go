package cache

import "errors"

// AllocationFailure is returned by Insert only when allocating the new
// recency node or map entry failed. When it is returned, the cache's
// observable state is unchanged — insert makes no other changes first.
//
// A find miss and a duplicate insert are not errors; they are reported as
// plain booleans. Erase of a missing key is not an error either; it
// returns 0. There are no other error conditions in the core.
var AllocationFailure = errors.New("cache: allocation failure")

// errCapacity, errShardCount, and errCapacityTooSmall guard New's
// constructor arguments. They are construction-time validation, not part
// of AllocationFailure's runtime error surface.
var (
	errCapacity         = errors.New("cache: capacity must be > 0")
	errShardCount       = errors.New("cache: shardCount must be >= 0")
	errCapacityTooSmall = errors.New("cache: capacity must be >= shard count, so every shard gets at least 1 entry")
)
