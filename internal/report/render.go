package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/greenops"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// Render writes pred to w in the named format (table, json, ndjson, report).
func Render(w io.Writer, format string, pred *engine.Prediction) error {
	if pred == nil {
		return fmt.Errorf("render: nil prediction")
	}
	switch strings.ToLower(format) {
	case config.FormatTable, "":
		return RenderTable(w, pred)
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pred)
	case config.FormatNDJSON:
		return json.NewEncoder(w).Encode(pred)
	case config.FormatReport:
		_, err := io.WriteString(w, Text(pred.Result, pred.CreatedAt))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RenderTable writes a two-column summary followed by the recommendations.
func RenderTable(w io.Writer, pred *engine.Prediction) error {
	res := pred.Result
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	rows := [][2]string{
		{"SCORE", formatScore(res.PredictedScore) + "/100"},
		{"ENERGY SAVINGS", greenops.FormatNumber(int64(res.Savings.EnergyKWhPerMonth)) + " kWh/month"},
		{"WATER SAVINGS", greenops.FormatNumber(int64(res.Savings.WaterGalPerMonth)) + " gal/month"},
		{"COST SAVINGS", "$" + greenops.FormatNumber(int64(res.Savings.CostUSDPerYear)) + "/year"},
		{"MODEL", fmt.Sprintf("%s (%s, %s%% accuracy)", res.Model.Name, res.Model.Algorithm, formatScore(res.Model.Accuracy))},
	}
	if pred.Cached {
		rows = append(rows, [2]string{"SOURCE", "cache"})
	}

	if _, err := fmt.Fprintf(tw, "FIELD\tVALUE\n-----\t-----\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nRECOMMENDATIONS\n"); err != nil {
		return err
	}
	for i, rec := range res.Recommendations {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, rec); err != nil {
			return err
		}
	}
	return nil
}
