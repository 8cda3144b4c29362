// Package main is the entry point for the advisingdash CLI.
//
// Running the binary with no subcommand serves the dashboard. The report
// subcommand renders a dashboard's charts and workbook to a directory
// without starting a server.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"advisingdash/internal/config"
	"advisingdash/internal/infrastructure"
)

// rootCmd is the base command for the advisingdash CLI.
var rootCmd = &cobra.Command{
	Use:   "advisingdash",
	Short: "Career centre advising and workshop dashboards",
	Long: `advisingdash turns appointment and workshop exports into dashboards.

Without a subcommand it serves the web dashboard, where CSV or Excel files
are uploaded and explored. The report subcommand produces the same charts
and workbook offline.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or $"+config.ConfigEnvVar+")")
	addServeFlags(rootCmd)
}

// loadConfig reads the --config flag shared by every subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger initializes the global logger, falling back to the default
// slog logger when the configured output cannot be opened.
func newLogger(cfg *config.Config) *slog.Logger {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil || logger == nil {
		logger = slog.Default()
		logger.Warn("Failed to initialize logger, using default", slog.Any("error", err))
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
