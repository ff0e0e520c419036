package divscan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned for a strategy name or value that does not exist.
var ErrUnknownStrategy = errors.New("unknown reduction strategy")

// Strategy identifies one of the reduction implementations
type Strategy int

const (
	// Sequential reduces on the calling goroutine; it is the reference result.
	Sequential Strategy = iota
	// Mutex merges each shard's result under one shared lock.
	Mutex
	// Atomic merges with an atomic add and a CAS loop on the minimum.
	Atomic
)

// AllStrategies lists every strategy in benchmark order.
func AllStrategies() []Strategy {
	return []Strategy{Sequential, Mutex, Atomic}
}

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Mutex:
		return "mutex"
	case Atomic:
		return "atomic"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Label is the human-readable heading used by the text reporter.
func (s Strategy) Label() string {
	switch s {
	case Sequential:
		return "Without parallelization"
	case Mutex:
		return "With mutex"
	case Atomic:
		return "With atomic variables"
	default:
		return s.String()
	}
}

// ParseStrategy maps a name (as returned by String) to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sequential", "seq":
		return Sequential, nil
	case "mutex", "lock":
		return Mutex, nil
	case "atomic", "cas":
		return Atomic, nil
	default:
		return Sequential, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ParseStrategies parses a list of names, rejecting duplicates.
func ParseStrategies(names []string) ([]Strategy, error) {
	seen := make(map[Strategy]bool, len(names))
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			return nil, fmt.Errorf("strategy %s listed twice", s)
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Reduce dispatches to the implementation selected by s.
func Reduce(ds *Dataset, s Strategy, cfg Config) (Result, error) {
	switch s {
	case Sequential:
		return ReduceSequential(ds, cfg)
	case Mutex:
		return ReduceMutex(ds, cfg)
	case Atomic:
		return ReduceAtomic(ds, cfg)
	default:
		return EmptyResult(), fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
}
