// Package cli wires the taskwise commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskwise/pkg/config"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "taskwise",
	Short: "Taskwise - task analytics and notification scheduling",
	Long: `Taskwise manages tasks and derives productivity insights from
them: productive hours, completion rates, category performance, and a
recommended working order. It plans smart notifications from the same
data.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logConfig := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logConfig = observability.ProductionLogConfig()
	}
	logConfig.Level = cfg.LogLevel
	if verbose || cfg.IsDevelopment() {
		logConfig.Level = "debug"
	}
	return cfg, observability.NewLogger(logConfig), nil
}
