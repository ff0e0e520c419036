package divscan

import (
	"fmt"
	"math"
)

// NoMatch is the minimum reported when no element satisfied the predicate.
const NoMatch int32 = math.MaxInt32

// Dataset is an immutable sequence of int32 values shared read-only by all
// workers of a reduction.
type Dataset struct {
	values []int32
}

// NewDataset copies values into a new Dataset.
func NewDataset(values []int32) *Dataset {
	owned := make([]int32, len(values))
	copy(owned, values)
	return &Dataset{values: owned}
}

// wrapDataset takes ownership of values without copying.
// Callers must not retain the slice.
func wrapDataset(values []int32) *Dataset {
	if values == nil {
		values = []int32{}
	}
	return &Dataset{values: values}
}

// Len returns the number of values
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.values)
}

// At returns the value at index i
func (ds *Dataset) At(i int) int32 {
	return ds.values[i]
}

// Values returns a copy of the underlying values
func (ds *Dataset) Values() []int32 {
	out := make([]int32, ds.Len())
	if ds != nil {
		copy(out, ds.values)
	}
	return out
}

// shardValues returns the read-only view of one shard.
func (ds *Dataset) shardValues(s Shard) []int32 {
	if ds == nil || s.Empty() {
		return nil
	}
	return ds.values[s.Start:s.End]
}

// Result is the (count, min) pair produced by a shard or a whole reduction
type Result struct {
	Count int64
	Min   int32
}

// EmptyResult is the identity of the merge: nothing counted, no minimum.
func EmptyResult() Result {
	return Result{Count: 0, Min: NoMatch}
}

// Found reports whether at least one element matched
func (r Result) Found() bool {
	return r.Count > 0
}

// Merge combines two results. It is commutative and associative.
func (r Result) Merge(other Result) Result {
	merged := Result{Count: r.Count + other.Count, Min: r.Min}
	if other.Min < merged.Min {
		merged.Min = other.Min
	}
	return merged
}

func (r Result) String() string {
	if !r.Found() {
		return fmt.Sprintf("count=%d min=none", r.Count)
	}
	return fmt.Sprintf("count=%d min=%d", r.Count, r.Min)
}
