package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NerdMeNot/divscan"
	"github.com/NerdMeNot/divscan/internal/config"
)

// runFlags mirror the config file; only flags the user set override it.
type runFlags struct {
	size        int
	maxValue    int32
	seed        uint64
	input       string
	genWorkers  int
	threads     int
	divisor     int32
	granularity string
	warmup      int
	iterations  int
	strategies  []string
	noVerify    bool
	format      string
	style       string
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load or generate a dataset and benchmark every strategy on it",
		Long: `Runs the configured strategies on one dataset, reports count, minimum and
timing for each, and fails if a parallel strategy disagrees with the
sequential reduction.

Example:
  divscan run --size 10000000 --threads 16 --format table
  divscan run --input values.parquet --strategies mutex,atomic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a.cfg)
			return a.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.size, "size", "n", 0, "Number of values to generate")
	flags.Int32Var(&f.maxValue, "max", 0, "Generate values in [0, max)")
	flags.Uint64Var(&f.seed, "seed", 0, "Random seed")
	flags.StringVarP(&f.input, "input", "i", "", "Read the dataset from a .parquet or .arrow file")
	flags.IntVar(&f.genWorkers, "gen-workers", 0, "Generate with this many goroutines (0 = sequential)")
	flags.IntVarP(&f.threads, "threads", "t", 0, "Shards and worker goroutines per parallel reduction")
	flags.Int32VarP(&f.divisor, "divisor", "d", 0, "Divisor of the predicate")
	flags.StringVar(&f.granularity, "granularity", "", "Atomic minimum merge granularity (shard, element)")
	flags.IntVar(&f.warmup, "warmup", 0, "Untimed runs per strategy")
	flags.IntVar(&f.iterations, "iterations", 0, "Timed runs per strategy")
	flags.StringSliceVarP(&f.strategies, "strategies", "s", nil, "Strategies to run (sequential, mutex, atomic)")
	flags.BoolVar(&f.noVerify, "no-verify", false, "Skip the cross-strategy result check")
	flags.StringVarP(&f.format, "format", "f", "", "Report format (text, table, json)")
	flags.StringVar(&f.style, "style", "", "Table style (rounded, sharp, ascii, minimal)")

	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("size") {
		cfg.Dataset.Size = f.size
	}
	if changed("max") {
		cfg.Dataset.MaxValue = f.maxValue
	}
	if changed("seed") {
		cfg.Dataset.Seed = f.seed
	}
	if changed("input") {
		cfg.Dataset.Input = f.input
	}
	if changed("gen-workers") {
		cfg.Dataset.ParallelGeneration = f.genWorkers
	}
	if changed("threads") {
		cfg.Reduction.Threads = f.threads
	}
	if changed("divisor") {
		cfg.Reduction.Divisor = f.divisor
	}
	if changed("granularity") {
		cfg.Reduction.Granularity = f.granularity
	}
	if changed("warmup") {
		cfg.Bench.Warmup = f.warmup
	}
	if changed("iterations") {
		cfg.Bench.Iterations = f.iterations
	}
	if changed("strategies") {
		cfg.Bench.Strategies = f.strategies
	}
	if changed("no-verify") {
		cfg.Bench.Verify = !f.noVerify
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("style") {
		cfg.Output.TableStyle = f.style
	}
}

func (a *app) run(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	reduction, err := a.cfg.ReductionConfig()
	if err != nil {
		return err
	}
	opts, err := a.cfg.BenchOptions()
	if err != nil {
		return err
	}
	reporter, err := divscan.NewReporter(a.cfg.Output.Format, cmd.OutOrStdout(), a.cfg.Output.TableStyle)
	if err != nil {
		return err
	}
	src, err := a.cfg.Source()
	if err != nil {
		return err
	}

	a.logger.Info("loading dataset", zap.String("source", src.Describe()))
	start := time.Now()
	ds, err := src.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.logger.Info("dataset ready", zap.Int("size", ds.Len()), zap.Duration("elapsed", time.Since(start)))

	driver := divscan.NewDriver(reduction, opts, reporter, a.logger)
	if _, err := driver.Run(ds); err != nil {
		return err
	}
	return nil
}
