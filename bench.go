package divscan

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ErrMismatch is returned by Driver.Run when a parallel strategy disagrees
// with the sequential reduction.
var ErrMismatch = errors.New("reduction result mismatch")

// ============================================================================
// Timer
// ============================================================================

// Clock is the timer collaborator used to bracket each reduction
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Elapsed returns the duration between two clock readings
func Elapsed(t0, t1 time.Time) time.Duration {
	return t1.Sub(t0)
}

// ============================================================================
// Timing Statistics
// ============================================================================

// Timing holds timing results for one strategy
type Timing struct {
	Median time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Runs   []time.Duration
}

func computeTiming(runs []time.Duration) Timing {
	if len(runs) == 0 {
		return Timing{}
	}
	sorted := make([]time.Duration, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return Timing{
		Median: sorted[len(sorted)/2],
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / time.Duration(len(sorted)),
		Runs:   runs,
	}
}

// Measurement is one strategy's result and timing on a dataset
type Measurement struct {
	Strategy    Strategy
	Threads     int
	Granularity Granularity
	Result      Result
	Timing      Timing
}

// ============================================================================
// Benchmark Driver
// ============================================================================

// BenchOptions controls how the driver runs each strategy
type BenchOptions struct {
	// Warmup runs are executed but not timed
	Warmup int

	// Iterations is the number of timed runs per strategy (minimum 1)
	Iterations int

	// Strategies to run, in order. Empty means AllStrategies().
	Strategies []Strategy

	// Verify compares every parallel result against the sequential one
	Verify bool

	// CollectGarbage runs the GC before each timed run
	CollectGarbage bool
}

// DefaultBenchOptions runs each strategy once, verified
func DefaultBenchOptions() BenchOptions {
	return BenchOptions{
		Warmup:         0,
		Iterations:     1,
		Strategies:     AllStrategies(),
		Verify:         true,
		CollectGarbage: true,
	}
}

// Driver runs and times the reductions on one dataset and hands every
// measurement to its Reporter.
type Driver struct {
	Config   Config
	Options  BenchOptions
	Clock    Clock
	Reporter Reporter
	Logger   *zap.Logger
}

// NewDriver returns a Driver using the system clock. A nil logger is
// replaced by a no-op logger; a nil reporter discards measurements.
func NewDriver(cfg Config, opts BenchOptions, reporter Reporter, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = discardReporter{}
	}
	return &Driver{
		Config:   cfg,
		Options:  opts,
		Clock:    SystemClock{},
		Reporter: reporter,
		Logger:   logger,
	}
}

func (d *Driver) clock() Clock {
	if d.Clock == nil {
		return SystemClock{}
	}
	return d.Clock
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Measure runs strategy s on ds Warmup+Iterations times and times the
// non-warmup runs. Every run must return the same result.
func (d *Driver) Measure(ds *Dataset, s Strategy) (Measurement, error) {
	log := d.logger().With(zap.Stringer("strategy", s))
	clock := d.clock()

	for i := 0; i < d.Options.Warmup; i++ {
		if _, err := Reduce(ds, s, d.Config); err != nil {
			return Measurement{}, fmt.Errorf("%s warmup: %w", s, err)
		}
	}

	iterations := d.Options.Iterations
	if iterations < 1 {
		iterations = 1
	}

	var result Result
	runs := make([]time.Duration, iterations)
	for i := 0; i < iterations; i++ {
		if d.Options.CollectGarbage {
			runtime.GC()
		}
		start := clock.Now()
		r, err := Reduce(ds, s, d.Config)
		end := clock.Now()
		if err != nil {
			return Measurement{}, fmt.Errorf("%s: %w", s, err)
		}
		runs[i] = Elapsed(start, end)

		if i > 0 && r != result {
			return Measurement{}, fmt.Errorf("%w: %s run %d returned %s, run 0 returned %s",
				ErrMismatch, s, i, r, result)
		}
		result = r
		log.Debug("run finished", zap.Int("iteration", i), zap.Duration("elapsed", runs[i]))
	}

	m := Measurement{
		Strategy:    s,
		Threads:     d.Config.Threads,
		Granularity: d.Config.Granularity,
		Result:      result,
		Timing:      computeTiming(runs),
	}
	if s == Sequential {
		m.Threads = 1
	}

	log.Info("reduction finished",
		zap.Int64("count", result.Count),
		zap.Int32("min", result.Min),
		zap.Bool("found", result.Found()),
		zap.Duration("median", m.Timing.Median),
	)
	return m, nil
}

// Run measures every configured strategy, reports each measurement, then
// flushes the reporter. With Verify set, any disagreement with the
// sequential result is returned as ErrMismatch after reporting.
func (d *Driver) Run(ds *Dataset) ([]Measurement, error) {
	strategies := d.Options.Strategies
	if len(strategies) == 0 {
		strategies = AllStrategies()
	}

	d.logger().Info("benchmark starting",
		zap.Int("size", ds.Len()),
		zap.Int("threads", d.Config.Threads),
		zap.Int32("divisor", d.Config.Divisor),
		zap.Stringer("granularity", d.Config.Granularity),
		zap.Int("iterations", d.Options.Iterations),
	)

	measurements := make([]Measurement, 0, len(strategies))
	for _, s := range strategies {
		m, err := d.Measure(ds, s)
		if err != nil {
			return measurements, err
		}
		measurements = append(measurements, m)
		if err := d.Reporter.Report(m); err != nil {
			return measurements, fmt.Errorf("failed to report %s: %w", s, err)
		}
	}

	var verifyErr error
	if d.Options.Verify {
		verifyErr = d.verify(ds, measurements)
	}

	if err := d.Reporter.Flush(); err != nil {
		return measurements, fmt.Errorf("failed to flush report: %w", err)
	}
	return measurements, verifyErr
}

func (d *Driver) verify(ds *Dataset, measurements []Measurement) error {
	var baseline Result
	haveBaseline := false
	for _, m := range measurements {
		if m.Strategy == Sequential {
			baseline, haveBaseline = m.Result, true
			break
		}
	}
	if !haveBaseline {
		r, err := ReduceSequential(ds, d.Config)
		if err != nil {
			return err
		}
		baseline = r
	}

	var errs []error
	for _, m := range measurements {
		if m.Result != baseline {
			d.logger().Error("result mismatch",
				zap.Stringer("strategy", m.Strategy),
				zap.Stringer("got", m.Result),
				zap.Stringer("want", baseline),
			)
			errs = append(errs, fmt.Errorf("%w: %s returned %s, sequential %s",
				ErrMismatch, m.Strategy, m.Result, baseline))
		}
	}
	return errors.Join(errs...)
}
