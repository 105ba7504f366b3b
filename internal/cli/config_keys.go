package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
)

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print a configuration value",
		Example: `  ecopredict config get alarm.threshold`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return keyError(err)
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command. The value is validated
// before the file is written.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and save it",
		Example: `  ecopredict config set output.default_format json
  ecopredict config set alarm.threshold 85`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			if err := cfg.Set(args[0], args[1]); err != nil {
				return keyError(err)
			}
			if err := cfg.Validate(); err != nil {
				return validationError(err)
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			cmd.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := config.GetGlobalConfig().List()
			for _, key := range config.Keys() {
				cmd.Printf("%s = %s\n", key, values[key])
			}
			return nil
		},
	}
}

func keyError(err error) error {
	if errors.Is(err, config.ErrUnknownKey) {
		return validationError(fmt.Errorf("%w (see `ecopredict config list`)", err))
	}
	return validationError(err)
}
