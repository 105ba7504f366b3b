// Package report renders predictions for people and machines: a table, JSON,
// NDJSON, or the plain-text efficiency report users save alongside their
// bills.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/ecopredict/internal/greenops"
	"github.com/rshade/ecopredict/internal/score"
)

const (
	reportDateLayout     = "January 2, 2006"
	fileDateLayout       = "2006-01-02"
	divider              = "----------------------------------------"
	savingsPrecision     = 2
	defaultModelName     = "Energy Prediction Model"
	reportFilePermission = 0o600
)

// ErrUnsupportedFormat is returned by Render for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Text returns the plain-text report for result, dated generatedAt.
// The output depends only on its arguments.
func Text(result score.Result, generatedAt time.Time) string {
	var b strings.Builder

	model := result.Model.Name
	if model == "" {
		model = defaultModelName
	}
	accuracy := "N/A"
	if result.Model.Accuracy > 0 {
		accuracy = formatScore(result.Model.Accuracy)
	}

	b.WriteString("ENERGY EFFICIENCY REPORT\n")
	fmt.Fprintf(&b, "Generated on: %s\n", generatedAt.Format(reportDateLayout))
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "EFFICIENCY SCORE: %s/100\n", formatScore(result.PredictedScore))
	fmt.Fprintf(&b, "MODEL: %s\n", model)
	fmt.Fprintf(&b, "ACCURACY: %s%%\n\n", accuracy)

	b.WriteString(divider + "\n")
	b.WriteString("RECOMMENDATIONS:\n")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n" + divider + "\n")

	b.WriteString("POTENTIAL MONTHLY SAVINGS:\n\n")
	fmt.Fprintf(&b, "Energy: %s kWh\n", formatSavings(result.Savings.EnergyKWhPerMonth))
	fmt.Fprintf(&b, "Water: %s Gallons\n", formatSavings(result.Savings.WaterGalPerMonth))
	fmt.Fprintf(&b, "Annual Cost Savings: $%s\n\n", formatSavings(result.Savings.CostUSDPerYear))

	if eq, err := greenops.Calculate(greenops.EnergyInput{
		Value: float64(result.Savings.EnergyKWhPerMonth), Unit: "kWh",
	}); err == nil && !eq.IsEmpty {
		fmt.Fprintf(&b, "Monthly carbon avoided: %s kg CO2e\n", greenops.FormatFloat(eq.CarbonKg, 1))
		fmt.Fprintf(&b, "%s\n\n", eq.DisplayText)
	}

	b.WriteString(divider + "\n")
	b.WriteString("Thank you for using our Energy Efficiency Prediction Tool.\n")
	b.WriteString("For more information, please contact support.\n")

	return b.String()
}

// FileName returns the report file name for t: energy-report-YYYY-MM-DD.txt.
func FileName(t time.Time) string {
	return "energy-report-" + t.Format(fileDateLayout) + ".txt"
}

// WriteFile writes the report for result into dir, creating dir if needed,
// and returns the file path. An existing report for the same day is replaced.
func WriteFile(dir string, result score.Result, t time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("report directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(t))
	if err := os.WriteFile(path, []byte(Text(result, t)), reportFilePermission); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

// formatScore prints the shortest representation: 82 not 82.0, 69.6 as is.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSavings(v int) string {
	return strconv.FormatFloat(float64(v), 'f', savingsPrecision, 64)
}
