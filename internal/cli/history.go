package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/history"
)

// NewHistoryListCmd creates the history list command.
func NewHistoryListCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent predictions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return renderHistory(cmd, output, records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "maximum number of predictions to show")
	cmd.Flags().StringVarP(&output, "output", "o", config.FormatTable, "output format: table, json or ndjson")
	return cmd
}

func renderHistory(cmd *cobra.Command, output string, records []history.Record) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(output) {
	case config.FormatJSON:
		if records == nil {
			records = []history.Record{}
		}
		return writeJSON(w, records)
	case config.FormatNDJSON:
		return writeNDJSON(w, records)
	case config.FormatTable, "":
	default:
		return validationError(fmt.Errorf("unsupported output format %q", output))
	}

	if len(records) == 0 {
		cmd.Println("No predictions recorded yet")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tSCORE\tUSAGE\tHUMIDITY\tSOLAR\tWALL\tROOF\tORIENTATION")
	for _, rec := range records {
		in := rec.Input
		_, _ = fmt.Fprintf(tw, "%s\t%g\t%g%%\t%g%%\t%g kWh\t%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.Result.PredictedScore,
			in.UsagePercent, in.HumidityPercent, in.SolarKWh,
			dash(string(in.WallMaterial)), dash(string(in.RoofType)), dash(string(in.Orientation)))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewHistoryClearCmd creates the history clear command.
func NewHistoryClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded predictions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				answer := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(),
					"Delete all recorded predictions?", isTerminal(os.Stdin))
				if !answer.Accepted {
					return errors.New("aborted; pass --yes to clear without prompting")
				}
			}

			store, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Deleted %d prediction(s)\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
