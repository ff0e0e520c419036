package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NerdMeNot/divscan/internal/config"
	"github.com/NerdMeNot/divscan/internal/logging"
)

var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	logLevel   string
	logOutput  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "divscan",
		Short: "Parallel divisibility count and minimum: sequential vs mutex vs atomic",
		Long: `divscan counts the values of a large integer dataset that are divisible by
a fixed divisor and finds the smallest of them, three ways:

  sequential  one goroutine
  mutex       one goroutine per shard, merged under a single mutex
  atomic      one goroutine per shard, merged with atomic add and CAS

Every run times each strategy and checks that all of them agree.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logOutput, "log-output", "stderr", "Log destination (stderr, stdout or a file path)")

	rootCmd.AddCommand(newRunCmd(a), newGenerateCmd(a), newVersionCmd())
	return rootCmd
}

// setup loads configuration and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.FromEnv()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}

	a.logger, err = logging.New(logging.Options{
		Level:       a.cfg.Logging.Level,
		Development: a.cfg.Logging.Development,
		Verbose:     a.verbose,
		OutputPaths: []string{a.logOutput},
	})
	if err != nil {
		return err
	}
	a.logger.Debug("configuration loaded", zap.String("path", a.configPath))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "divscan %s\n", version)
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
