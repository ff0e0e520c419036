package divscan

// ============================================================================
// Local Reduction
// ============================================================================

// reduceValues counts the values divisible by divisor and tracks their minimum.
// Go's % keeps the dividend's sign, so v%divisor == 0 holds for negative
// multiples as well.
func reduceValues(values []int32, divisor int32) Result {
	var count int64
	localMin := NoMatch
	for _, v := range values {
		if v%divisor == 0 {
			count++
			if v < localMin {
				localMin = v
			}
		}
	}
	return Result{Count: count, Min: localMin}
}

// ReduceShard runs the local reduction over one shard of ds.
// It has no side effects and may run concurrently on any shards of the
// same dataset. An empty shard yields EmptyResult().
//
// divisor must be non-zero.
func ReduceShard(ds *Dataset, s Shard, divisor int32) Result {
	return reduceValues(ds.shardValues(s), divisor)
}

// ============================================================================
// Sequential Reduction
// ============================================================================

// ReduceSequential reduces the whole dataset on the calling goroutine.
// cfg.Threads and cfg.Granularity are ignored.
func ReduceSequential(ds *Dataset, cfg Config) (Result, error) {
	if cfg.Divisor == 0 {
		return EmptyResult(), ErrInvalidDivisor
	}
	return ReduceShard(ds, Shard{Start: 0, End: ds.Len()}, cfg.Divisor), nil
}
