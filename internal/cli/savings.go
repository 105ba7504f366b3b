package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/greenops"
	"github.com/rshade/ecopredict/internal/savings"
)

// NewSavingsCmd creates the savings command.
func NewSavingsCmd() *cobra.Command {
	var (
		in     savings.BillInput
		output string
	)

	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Estimate yearly savings from monthly utility bills",
		Example: `  ecopredict savings --energy-bill 140 --water-bill 60
  ecopredict savings --energy-bill 90 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			est, err := savings.Calculate(in)
			if err != nil {
				if errors.Is(err, savings.ErrInvalidBill) {
					return validationError(err)
				}
				return err
			}
			return renderSavings(cmd, output, est)
		},
	}

	cmd.Flags().Float64Var(&in.MonthlyEnergyBill, "energy-bill", 0, "monthly energy bill in USD")
	cmd.Flags().Float64Var(&in.MonthlyWaterBill, "water-bill", 0, "monthly water bill in USD")
	cmd.Flags().Float64Var(&in.HomeSizeSqFt, "home-size", 0, "home size in square feet")
	cmd.Flags().IntVar(&in.Appliances, "appliances", 0, "number of major appliances")
	cmd.Flags().StringVarP(&output, "output", "o", config.FormatTable, "output format: table or json")

	return cmd
}

func renderSavings(cmd *cobra.Command, output string, est savings.Estimate) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(output) {
	case config.FormatJSON, config.FormatNDJSON:
		return writeJSON(w, est)
	case config.FormatTable, "":
	default:
		return validationError(fmt.Errorf("unsupported output format %q", output))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ENERGY SAVINGS", "$" + greenops.FormatFloat(est.EnergySavings, 2) + "/year"},
		{"WATER SAVINGS", "$" + greenops.FormatFloat(est.WaterSavings, 2) + "/year"},
		{"TOTAL SAVINGS", "$" + greenops.FormatFloat(est.TotalSavings, 2) + "/year"},
		{"ENERGY AVOIDED", greenops.FormatFloat(est.EnergySavedKWh, 0) + " kWh/year"},
		{"CARBON AVOIDED", greenops.FormatFloat(est.CarbonReductionKg, 1) + " kg CO2e/year"},
	}
	_, _ = fmt.Fprintln(tw, "FIELD\tVALUE")
	_, _ = fmt.Fprintln(tw, "-----\t-----")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !est.Equivalency.IsEmpty {
		_, _ = fmt.Fprintf(w, "\n%s\n", est.Equivalency.DisplayText)
	}
	return nil
}
