// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/core/config"
	"github.com/cocowh/pagebuf/core/usage"
	"github.com/cocowh/pagebuf/pkg/logger"
)

var (
	configPath string
	verbose    bool
	logLevel   string
)

// app holds what the subcommands share once flags and config are resolved.
type app struct {
	settings  *config.Settings
	tracker   *usage.Tracker
	allocator *alloc.Allocator
}

var current *app

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagebuf",
	Short: "Inspect and exercise the page-granular buffer allocator",
	Long: `pagebuf reports the allocation granularity and tier threshold of the
buffer allocator, benchmarks it against plain Go allocations and runs
concurrent stress tests that check the usage counters for leaks.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(stressCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (json, yaml or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "set log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("small-threshold", "", "capacity from which buffers are page mapped, e.g. 512KiB")
}

// setup resolves configuration in the order defaults, file, environment,
// flags, then installs the logger and builds the allocator.
func setup(cmd *cobra.Command, args []string) error {
	c := config.WithConfig(
		config.WithDefaultConfig(config.Defaults()),
		config.WithFileConfig(configPath),
		config.WithEnvConfig(config.EnvPrefix),
		config.WithFlagConfig(cmd.Flags(), map[string]string{
			"log-level":       config.KeyLoggerLevel,
			"small-threshold": config.KeyMemorySmallThreshold,
		}),
	)
	if verbose {
		c.Set(config.KeyLoggerLevel, "debug")
	}

	settings, err := config.Decode(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.InitDefaultLogger(settings.Logger.Options()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tracker := usage.NewTracker()
	usage.SetDefault(tracker)
	opts := append(settings.Memory.AllocatorOptions(), alloc.WithTracker(tracker))
	current = &app{
		settings:  settings,
		tracker:   tracker,
		allocator: alloc.New(opts...),
	}
	logger.Debugf("allocator ready: granularity=%d small_threshold=%d tracker=%s",
		current.allocator.Granularity(), current.allocator.SmallThreshold(), tracker.ID())
	return nil
}

func teardown() error {
	if current == nil {
		return nil
	}
	var err error
	if current.settings.Memory.ReportOnExit && current.tracker.Report(nil) {
		err = fmt.Errorf("buffer memory leaked")
	}
	_ = logger.Sync()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
