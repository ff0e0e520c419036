package divscan

import (
	"sync"
	"sync/atomic"
)

// atomicAggregate is the lock-free shared state of one ReduceAtomic call.
type atomicAggregate struct {
	count atomic.Int64
	min   atomic.Int32
}

func newAtomicAggregate() *atomicAggregate {
	agg := &atomicAggregate{}
	agg.min.Store(NoMatch)
	return agg
}

func (agg *atomicAggregate) result() Result {
	return Result{Count: agg.count.Load(), Min: agg.min.Load()}
}

// storeMin lowers *target to candidate if candidate is smaller, retrying
// the CAS whenever another goroutine changed the value in between.
// It gives up as soon as the observed value is already <= candidate, and
// reports whether this call installed candidate.
func storeMin(target *atomic.Int32, candidate int32) bool {
	current := target.Load()
	for candidate < current {
		if target.CompareAndSwap(current, candidate) {
			return true
		}
		current = target.Load()
	}
	return false
}

// ReduceAtomic reduces ds with one goroutine per shard, merging without
// locks: the count with a single atomic add per shard and the minimum with
// storeMin. With cfg.Granularity == PerElement the minimum is merged for
// every matching element instead of once per shard.
func ReduceAtomic(ds *Dataset, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return EmptyResult(), err
	}
	shards, err := Partition(ds.Len(), cfg.Threads)
	if err != nil {
		return EmptyResult(), err
	}

	agg := newAtomicAggregate()
	work := shardWorkerFor(cfg.Granularity)

	var wg sync.WaitGroup
	for _, shard := range shards {
		wg.Add(1)
		go func(s Shard) {
			defer wg.Done()
			work(agg, ds.shardValues(s), cfg.Divisor)
		}(shard)
	}
	wg.Wait()

	return agg.result(), nil
}

type shardWorker func(agg *atomicAggregate, values []int32, divisor int32)

func shardWorkerFor(g Granularity) shardWorker {
	if g == PerElement {
		return mergeEachElement
	}
	return mergeOncePerShard
}

func mergeOncePerShard(agg *atomicAggregate, values []int32, divisor int32) {
	local := reduceValues(values, divisor)
	agg.count.Add(local.Count)
	storeMin(&agg.min, local.Min)
}

func mergeEachElement(agg *atomicAggregate, values []int32, divisor int32) {
	var count int64
	for _, v := range values {
		if v%divisor == 0 {
			count++
			storeMin(&agg.min, v)
		}
	}
	agg.count.Add(count)
}
