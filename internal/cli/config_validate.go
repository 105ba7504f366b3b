package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (defaults, ~/.ecopredict/config.yaml,
any project overlay and ECOPREDICT_* environment overrides).

This includes:
- Output format and precision
- Log level and format
- Cache TTL and size limits
- Alarm threshold, interval, cooldown and usage source
- Server address and timeouts`,
		Example: `  # Validate current configuration
  ecopredict config validate

  # Validate and show detailed information
  ecopredict config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return validationError(fmt.Errorf("configuration validation failed: %w", err))
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.Path())
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)

	if cfg.Cache.Enabled {
		cmd.Printf("  Cache: %s (ttl %ds, max %d MB)\n", cfg.Cache.Directory, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	} else {
		cmd.Println("  Cache: disabled")
	}
	if cfg.History.Enabled {
		cmd.Printf("  History: %s\n", cfg.History.Path)
	} else {
		cmd.Println("  History: disabled")
	}

	printAlarmDetails(cmd, cfg)
	cmd.Printf("  Server address: %s\n", cfg.Server.Address)
}

// printAlarmDetails prints the alarm configuration summary.
func printAlarmDetails(cmd *cobra.Command, cfg *config.Config) {
	if !cfg.Alarm.Enabled {
		cmd.Println("  Alarm: disabled")
		return
	}
	cmd.Printf("  Alarm: threshold %g%%, every %ds, cooldown %ds, source %s\n",
		cfg.Alarm.Threshold, cfg.Alarm.IntervalSeconds, cfg.Alarm.CooldownSeconds, cfg.Alarm.Source)
	if cfg.Alarm.Source == config.SourceMQTT {
		cmd.Printf("    MQTT: %s topic %s\n", cfg.Alarm.MQTT.Broker, cfg.Alarm.MQTT.Topic)
	}
}
