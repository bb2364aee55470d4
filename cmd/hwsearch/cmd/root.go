// Package cmd provides the CLI commands for hwsearch.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/errors"
	"github.com/hwcatalog/hwsearch/internal/logging"
	"github.com/hwcatalog/hwsearch/internal/profiling"
	"github.com/hwcatalog/hwsearch/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	profileCPU     string
	profileMem     string
	loggingCleanup func()
	cpuCleanup     func()
)

// NewRootCmd creates the root command for the hwsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hwsearch",
		Short: "Static search index toolchain for hardware catalogs",
		Long: `hwsearch turns a product catalog into static search artifacts and
queries them: build a raw inverted index, optimize it into compressed
alphabetic fragments, serve the artifacts over HTTP, and run searches
against them.

Typical flow:

  hwsearch build -c catalog.json -o search_index.json
  hwsearch optimize -i search_index.json -o public/indexes
  hwsearch search "martillo" --index-dir public/indexes`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("hwsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Explicit .hwsearch.yaml file (default: search the working directory)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")

	cmd.PersistentPreRunE = startRun
	cmd.PersistentPostRunE = stopRun

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startRun wires slog and profiling before any command runs.
func startRun(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.FileConfig()
		cfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Debug("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()))
	}

	if profileCPU != "" {
		cpuCleanup, err = profiling.StartCPU(profileCPU)
		if err != nil {
			return err
		}
	}
	return nil
}

func stopRun(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}

	if profileMem != "" {
		if err := profiling.WriteHeap(profileMem); err != nil {
			return err
		}
	}

	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(".")
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errors.FormatForCLI(err))
		return err
	}
	return nil
}
