package divscan

import "sync"

// mutexAggregate is the shared (count, min) of one ReduceMutex call.
// Fields are only touched inside merge.
type mutexAggregate struct {
	mu    sync.Mutex
	count int64
	min   int32
}

func (agg *mutexAggregate) merge(local Result) {
	agg.mu.Lock()
	defer agg.mu.Unlock()

	agg.count += local.Count
	if local.Min < agg.min {
		agg.min = local.Min
	}
}

// ReduceMutex reduces ds with one goroutine per shard. Each worker reduces
// its shard locally and then folds the local result into the shared
// aggregate under a single mutex.
//
// The call returns once every worker has been joined. A worker that never
// finishes blocks it forever; there is no timeout.
func ReduceMutex(ds *Dataset, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return EmptyResult(), err
	}
	shards, err := Partition(ds.Len(), cfg.Threads)
	if err != nil {
		return EmptyResult(), err
	}

	agg := &mutexAggregate{min: NoMatch}

	var wg sync.WaitGroup
	for _, shard := range shards {
		wg.Add(1)
		go func(s Shard) {
			defer wg.Done()
			local := ReduceShard(ds, s, cfg.Divisor)
			agg.merge(local)
		}(shard)
	}
	wg.Wait()

	// Every worker has returned; no lock needed to read.
	return Result{Count: agg.count, Min: agg.min}, nil
}
