// Package config loads the YAML run configuration for the divscan CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/NerdMeNot/divscan"
)

// Config holds everything a benchmark run needs.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Reduction ReductionConfig `yaml:"reduction"`
	Bench     BenchConfig     `yaml:"bench"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatasetConfig configures the data source.
type DatasetConfig struct {
	Size     int    `yaml:"size"`
	MaxValue int32  `yaml:"max_value"` // values are drawn from [0, max_value)
	Seed     uint64 `yaml:"seed"`

	// Input is a .parquet or .arrow file; when set, generation is skipped.
	Input string `yaml:"input"`

	// ParallelGeneration > 0 generates with that many goroutines.
	ParallelGeneration int `yaml:"parallel_generation"`
}

// ReductionConfig configures every reduction.
type ReductionConfig struct {
	Threads     int    `yaml:"threads"`
	Divisor     int32  `yaml:"divisor"`
	Granularity string `yaml:"granularity"` // shard, element
}

// BenchConfig configures the driver.
type BenchConfig struct {
	Warmup     int      `yaml:"warmup"`
	Iterations int      `yaml:"iterations"`
	Strategies []string `yaml:"strategies"`
	Verify     bool     `yaml:"verify"`
}

// OutputConfig configures the reporter.
type OutputConfig struct {
	Format     string `yaml:"format"`      // text, table, json
	TableStyle string `yaml:"table_style"` // rounded, sharp, ascii, minimal
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig mirrors the classic run: 100M values in [0, 100000),
// 64 threads, divisor 19.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Size:     100_000_000,
			MaxValue: 100_000,
			Seed:     1,
		},
		Reduction: ReductionConfig{
			Threads:     64,
			Divisor:     19,
			Granularity: "shard",
		},
		Bench: BenchConfig{
			Warmup:     0,
			Iterations: 1,
			Strategies: []string{"sequential", "mutex", "atomic"},
			Verify:     true,
		},
		Output: OutputConfig{
			Format:     "text",
			TableStyle: "rounded",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default value; unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Unknown keys are errors.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied, for runs
// without a config file.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("DIVSCAN_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DIVSCAN_THREADS %q: %w", v, err)
		}
		c.Reduction.Threads = n
	}
	if v := os.Getenv("DIVSCAN_DIVISOR"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DIVSCAN_DIVISOR %q: %w", v, err)
		}
		c.Reduction.Divisor = int32(n)
	}
	if v := os.Getenv("DIVSCAN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks every section that can be checked without loading data.
func (c *Config) Validate() error {
	if c.Dataset.Input == "" {
		if c.Dataset.Size < 0 {
			return fmt.Errorf("dataset.size: %w", divscan.ErrNegativeLength)
		}
		if c.Dataset.MaxValue < 1 {
			return fmt.Errorf("dataset.max_value: %w", divscan.ErrInvalidRange)
		}
	}
	if _, err := c.ReductionConfig(); err != nil {
		return err
	}
	if _, err := c.BenchOptions(); err != nil {
		return err
	}
	return nil
}

// ReductionConfig converts the reduction section.
func (c *Config) ReductionConfig() (divscan.Config, error) {
	g, err := divscan.ParseGranularity(c.Reduction.Granularity)
	if err != nil {
		return divscan.Config{}, fmt.Errorf("reduction.granularity: %w", err)
	}
	cfg := divscan.Config{
		Threads:     c.Reduction.Threads,
		Divisor:     c.Reduction.Divisor,
		Granularity: g,
	}
	if err := cfg.Validate(); err != nil {
		return divscan.Config{}, fmt.Errorf("reduction: %w", err)
	}
	return cfg, nil
}

// BenchOptions converts the bench section.
func (c *Config) BenchOptions() (divscan.BenchOptions, error) {
	strategies, err := divscan.ParseStrategies(c.Bench.Strategies)
	if err != nil {
		return divscan.BenchOptions{}, fmt.Errorf("bench.strategies: %w", err)
	}
	if c.Bench.Iterations < 1 {
		return divscan.BenchOptions{}, fmt.Errorf("bench.iterations must be at least 1, got %d", c.Bench.Iterations)
	}
	if c.Bench.Warmup < 0 {
		return divscan.BenchOptions{}, fmt.Errorf("bench.warmup must not be negative, got %d", c.Bench.Warmup)
	}
	return divscan.BenchOptions{
		Warmup:         c.Bench.Warmup,
		Iterations:     c.Bench.Iterations,
		Strategies:     strategies,
		Verify:         c.Bench.Verify,
		CollectGarbage: true,
	}, nil
}

// Source returns the configured data source.
func (c *Config) Source() (divscan.Source, error) {
	if c.Dataset.Input != "" {
		return divscan.SourceFor(c.Dataset.Input)
	}
	return divscan.RandomSource{
		Size:     c.Dataset.Size,
		MaxValue: c.Dataset.MaxValue,
		Seed:     c.Dataset.Seed,
		Workers:  c.Dataset.ParallelGeneration,
	}, nil
}
