package divscan

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Parallel Reduction Configuration
// ============================================================================

var (
	// ErrInvalidThreads is returned when a reduction is asked to run on fewer than one shard.
	ErrInvalidThreads = errors.New("thread count must be at least 1")

	// ErrInvalidDivisor is returned for a zero divisor.
	ErrInvalidDivisor = errors.New("divisor must be non-zero")

	// ErrNegativeLength is returned when a length or size is negative.
	ErrNegativeLength = errors.New("length must not be negative")

	// ErrUnknownGranularity is returned by ParseGranularity.
	ErrUnknownGranularity = errors.New("unknown merge granularity")
)

// Granularity selects how often the atomic strategy merges into the shared minimum.
type Granularity int

const (
	// PerShard merges the shard's local minimum once, after the local loop.
	PerShard Granularity = iota
	// PerElement runs the CAS merge for every matching element.
	PerElement
)

func (g Granularity) String() string {
	switch g {
	case PerShard:
		return "shard"
	case PerElement:
		return "element"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// ParseGranularity accepts "shard" or "element" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shard", "per-shard":
		return PerShard, nil
	case "element", "per-element":
		return PerElement, nil
	default:
		return PerShard, fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Config controls a single reduction call
type Config struct {
	// Threads is the number of shards, and so the number of worker goroutines
	Threads int

	// Divisor is the divisibility predicate's modulus
	Divisor int32

	// Granularity only applies to the atomic strategy
	Granularity Granularity
}

// DefaultConfig returns 64 threads, divisor 19, per-shard merging
func DefaultConfig() Config {
	return Config{
		Threads:     64,
		Divisor:     19,
		Granularity: PerShard,
	}
}

// Validate checks the fields every parallel reduction depends on.
func (cfg Config) Validate() error {
	if cfg.Threads < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreads, cfg.Threads)
	}
	if cfg.Divisor == 0 {
		return ErrInvalidDivisor
	}
	if cfg.Granularity != PerShard && cfg.Granularity != PerElement {
		return fmt.Errorf("%w: %d", ErrUnknownGranularity, int(cfg.Granularity))
	}
	return nil
}

// ============================================================================
// Static Shard Partitioning
// ============================================================================

// Shard is a half-open index range [Start, End) assigned to one worker
type Shard struct {
	Start int
	End   int
}

// Len returns the number of indices in the shard
func (s Shard) Len() int {
	return s.End - s.Start
}

// Empty reports whether the shard covers no indices
func (s Shard) Empty() bool {
	return s.End <= s.Start
}

func (s Shard) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// Partition splits [0, n) into t contiguous shards of n/t indices each.
// The last shard absorbs the remainder. When n < t the leading shards are
// empty and the last one holds everything.
func Partition(n, t int) ([]Shard, error) {
	if t < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreads, t)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeLength, n)
	}

	chunkSize := n / t
	shards := make([]Shard, t)
	for i := 0; i < t; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == t-1 {
			end = n
		}
		shards[i] = Shard{Start: start, End: end}
	}
	return shards, nil
}
