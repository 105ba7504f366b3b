package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/score"
)

// NewTipsCmd creates the tips command.
func NewTipsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Show energy-saving tips and typical appliance consumption",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case config.FormatJSON:
				return writeJSON(w, struct {
					Tips       []score.Tip       `json:"tips"`
					Appliances []score.Appliance `json:"appliances"`
				}{score.Tips(), score.Appliances()})
			case config.FormatTable, "":
			default:
				return validationError(fmt.Errorf("unsupported output format %q", output))
			}

			cmd.Println("ENERGY-SAVING TIPS")
			for _, tip := range score.Tips() {
				cmd.Printf("\n%s %s\n  %s\n", tip.Icon, tip.Title, tip.Description)
			}

			cmd.Println("\nTYPICAL APPLIANCE CONSUMPTION")
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "APPLIANCE\tAVG CONSUMPTION\tPOTENTIAL SAVINGS")
			for _, a := range score.Appliances() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.AvgConsumption, a.PotentialSavings)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FormatTable, "output format: table or json")
	return cmd
}

// NewOptionsCmd creates the options command, which lists accepted input values.
func NewOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List accepted input values and ranges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := score.DefaultInput()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "FLAG\tACCEPTS\tDEFAULT")
			_, _ = fmt.Fprintf(tw, "--usage\t%g-%g %%\t%g\n", score.MinPercent, score.MaxPercent, def.UsagePercent)
			_, _ = fmt.Fprintf(tw, "--humidity\t%g-%g %%\t%g\n", score.MinPercent, score.MaxPercent, def.HumidityPercent)
			_, _ = fmt.Fprintf(tw, "--solar\t%g-%g kWh/day\t%g\n", score.MinSolarKWh, score.MaxSolarKWh, def.SolarKWh)
			_, _ = fmt.Fprintf(tw, "--wall\t%s\t%s\n", joinOptions(score.WallMaterials()), def.WallMaterial)
			_, _ = fmt.Fprintf(tw, "--roof\t%s\t%s\n", joinOptions(score.RoofTypes()), def.RoofType)
			_, _ = fmt.Fprintf(tw, "--orientation\t%s\t%s\n", joinOptions(score.Orientations()), def.Orientation)
			return tw.Flush()
		},
	}
	return cmd
}

func joinOptions[T ~string](opts []T) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = string(o)
	}
	return strings.Join(parts, ", ")
}
