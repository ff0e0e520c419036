package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NerdMeNot/divscan"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		out         string
		size        int
		maxValue    int32
		seed        uint64
		workers     int
		compression string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random dataset to a .parquet or .arrow file",
		Long: `Generates a uniform random dataset and writes it as a single "value"
column, so several runs can share the exact same input.

Example:
  divscan generate --out values.parquet --size 10000000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if !cmd.Flags().Changed("size") {
				size = a.cfg.Dataset.Size
			}
			if !cmd.Flags().Changed("max") {
				maxValue = a.cfg.Dataset.MaxValue
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Dataset.Seed
			}
			if !cmd.Flags().Changed("gen-workers") {
				workers = a.cfg.Dataset.ParallelGeneration
			}

			src := divscan.RandomSource{Size: size, MaxValue: maxValue, Seed: seed, Workers: workers}
			start := time.Now()
			ds, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("dataset generated",
				zap.String("source", src.Describe()),
				zap.Duration("elapsed", time.Since(start)),
			)

			switch strings.ToLower(filepath.Ext(out)) {
			case ".parquet":
				opts := divscan.DefaultParquetWriteOptions()
				opts.Compression = compression
				err = divscan.WriteParquet(out, ds, opts)
			case ".arrow", ".ipc", ".arrows":
				err = divscan.WriteArrowIPCFile(out, ds)
			default:
				return fmt.Errorf("%w: %q", divscan.ErrUnknownFormat, out)
			}
			if err != nil {
				return err
			}

			a.logger.Info("dataset written", zap.String("path", out), zap.Int("size", ds.Len()))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d values to %s\n", ds.Len(), out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "", "Output file (.parquet or .arrow)")
	flags.IntVarP(&size, "size", "n", 0, "Number of values")
	flags.Int32Var(&maxValue, "max", 0, "Values are drawn from [0, max)")
	flags.Uint64Var(&seed, "seed", 0, "Random seed")
	flags.IntVar(&workers, "gen-workers", 0, "Generate with this many goroutines (0 = sequential)")
	flags.StringVar(&compression, "compression", "snappy", "Parquet compression (snappy, gzip, zstd, none)")

	return cmd
}
