// Package cli implements the ecopredict command line.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the ecopredict CLI.
// It wires up configuration, logging and tracing, then registers the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
	)

	cmd := &cobra.Command{
		Use:     "ecopredict",
		Short:   "Household energy-efficiency score engine",
		Long:    "ecopredict: score a household's energy efficiency and estimate the savings available",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cwd, _ := os.Getwd()
			dir := config.ResolveProjectDir(cmd.Context(), projectDir, cwd)
			config.SetGlobalConfig(config.NewWithProjectDir(cmd.Context(), dir))

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
		SilenceUsage: true,
	}

	// cmd.Print* writes to stderr unless an output is set.
	cmd.SetOut(os.Stdout)

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"directory holding a project-local .ecopredict/config.yaml overlay")

	cmd.AddCommand(
		NewPredictCmd(), NewBatchCmd(), NewValidateCmd(), NewSavingsCmd(), NewAlarmCmd(), NewServeCmd(),
		newHistoryCmd(), NewTipsCmd(), NewOptionsCmd(), newConfigCmd(), newCacheCmd(), NewSetupCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Score the default household
  ecopredict predict

  # Score a specific household and print JSON
  ecopredict predict --usage 75 --humidity 40 --solar 8 --wall brick --roof "Solar Roof" --orientation south -o json

  # Fill in the form interactively
  ecopredict predict --interactive

  # Save a text report
  ecopredict predict --output report --report-dir ./reports

  # Score every household in a file
  ecopredict batch households.yaml

  # Estimate savings from monthly bills
  ecopredict savings --energy-bill 140 --water-bill 60

  # Watch usage and alert above 85%
  ecopredict alarm --threshold 85

  # Serve the HTTP API
  ecopredict serve --address :8080

  # Set configuration values
  ecopredict config set output.default_format json`

// newHistoryCmd creates the history command group.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "history", Short: "Local prediction history"}
	cmd.AddCommand(NewHistoryListCmd(), NewHistoryClearCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Result cache commands"}
	cmd.AddCommand(NewCacheClearCmd(), NewCacheStatsCmd())
	return cmd
}
