package divscan

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestStoreMin(t *testing.T) {
	var target atomic.Int32
	target.Store(NoMatch)

	if !storeMin(&target, 50) {
		t.Error("storeMin(50) over NoMatch should install")
	}
	if storeMin(&target, 70) {
		t.Error("storeMin(70) over 50 should not install")
	}
	if storeMin(&target, 50) {
		t.Error("storeMin(50) over 50 should not install")
	}
	if !storeMin(&target, -3) {
		t.Error("storeMin(-3) over 50 should install")
	}
	if storeMin(&target, NoMatch) {
		t.Error("storeMin(NoMatch) should never install")
	}
	if got := target.Load(); got != -3 {
		t.Errorf("target = %d, want -3", got)
	}
}

func TestStoreMin_Concurrent(t *testing.T) {
	var target atomic.Int32
	target.Store(NoMatch)

	const workers = 64
	const perWorker = 1000

	var installs atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			// Descending candidates force repeated contention on the same word.
			for i := perWorker; i > 0; i-- {
				if storeMin(&target, int32(i*workers+id)) {
					installs.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := target.Load(); got != workers {
		t.Errorf("target = %d, want %d", got, workers)
	}
	if installs.Load() < 1 {
		t.Error("at least one storeMin call should have installed")
	}
}

func TestReduceAtomic_GranularitiesAgree(t *testing.T) {
	ds, err := Generate(100_000, 100_000, 99)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	shard, err := ReduceAtomic(ds, Config{Threads: 32, Divisor: 19, Granularity: PerShard})
	if err != nil {
		t.Fatalf("per shard failed: %v", err)
	}
	element, err := ReduceAtomic(ds, Config{Threads: 32, Divisor: 19, Granularity: PerElement})
	if err != nil {
		t.Fatalf("per element failed: %v", err)
	}
	if shard != element {
		t.Errorf("per shard = %v, per element = %v", shard, element)
	}
}

func TestShardWorkerFor(t *testing.T) {
	values := []int32{38, 19, 4, 57}
	for _, g := range []Granularity{PerShard, PerElement} {
		agg := newAtomicAggregate()
		shardWorkerFor(g)(agg, values, 19)
		if got := agg.result(); got != (Result{Count: 3, Min: 19}) {
			t.Errorf("%v: got %v, want count=3 min=19", g, got)
		}
	}
}
