package cli

import (
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command, which checks inputs without
// computing a score.
func NewValidateCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check prediction inputs against their allowed ranges",
		Example: `  ecopredict validate --usage 120 --solar 4
  ecopredict validate --roof "Solar Roof"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := flags.input(); err != nil {
				return err
			}
			cmd.Println("Input is valid")
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
