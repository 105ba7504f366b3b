package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/engine/batch"
	"github.com/rshade/ecopredict/internal/score"
)

// household is one entry of a batch file. Numeric fields are pointers so a
// missing value is reported instead of silently scored as zero.
type household struct {
	Name        string   `yaml:"name"`
	Usage       *float64 `yaml:"usage_percent"`
	Humidity    *float64 `yaml:"humidity_percent"`
	Solar       *float64 `yaml:"solar_kwh"`
	Wall        string   `yaml:"wall_material"`
	Roof        string   `yaml:"roof_type"`
	Orientation string   `yaml:"building_orientation"`
}

// loadHouseholds reads a YAML or JSON batch file: either a list of
// households or a mapping with a "households" list.
func loadHouseholds(r io.Reader) ([]household, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("batch file is empty")
	}

	var root yaml.Node
	if err = yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("batch file is empty")
	}

	var list []household
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&list)
	case yaml.MappingNode:
		var wrapped struct {
			Households []household `yaml:"households"`
		}
		err = doc.Decode(&wrapped)
		list = wrapped.Households
	default:
		return nil, errors.New("batch file must contain a list of households")
	}
	if err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("batch file contains no households")
	}
	return list, nil
}

// input converts h, reporting missing numbers and unknown options.
func (h household) input() (score.Input, error) {
	var errs []error
	num := func(field string, v *float64) float64 {
		if v == nil {
			errs = append(errs, fmt.Errorf("%s is required", field))
			return 0
		}
		return *v
	}
	in := score.Input{
		UsagePercent:    num(score.FieldUsagePercent, h.Usage),
		HumidityPercent: num(score.FieldHumidityPercent, h.Humidity),
		SolarKWh:        num(score.FieldSolarKWh, h.Solar),
	}

	var err error
	if in.WallMaterial, err = score.ParseWallMaterial(h.Wall); err != nil {
		errs = append(errs, err)
	}
	if in.RoofType, err = score.ParseRoofType(h.Roof); err != nil {
		errs = append(errs, err)
	}
	if in.Orientation, err = score.ParseOrientation(h.Orientation); err != nil {
		errs = append(errs, err)
	}
	return in, errors.Join(errs...)
}

// batchRow is one line of batch output.
type batchRow struct {
	Index      int                `json:"index"`
	Name       string             `json:"name,omitempty"`
	Prediction *engine.Prediction `json:"prediction,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewBatchCmd creates the batch command, which scores every household in a file.
func NewBatchCmd() *cobra.Command {
	var (
		output      string
		chunkSize   int
		concurrency int
		noCache     bool
		latency     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Score every household listed in a YAML or JSON file",
		Long: `Scores each household in the file and prints one row per household.

The file holds a list of households, or a mapping with a "households" list.
Each entry uses the prediction field names:

  households:
    - name: cottage
      usage_percent: 60
      humidity_percent: 45
      solar_kwh: 5
      wall_material: Brick
      roof_type: Asphalt Shingles
      building_orientation: South

Households that fail validation are reported in place; the command then
exits with status 2. Use "-" to read the file from stdin.`,
		Example: `  ecopredict batch households.yaml
  ecopredict batch households.json -o ndjson --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			switch strings.ToLower(output) {
			case config.FormatTable, config.FormatJSON, config.FormatNDJSON:
			default:
				return validationError(fmt.Errorf("unsupported output format %q", output))
			}

			list, err := readHouseholds(cmd, args[0])
			if err != nil {
				return validationError(err)
			}

			predictor, cleanup := openPredictor(ctx, cfg, predictorOptions{
				latency:    latency,
				latencySet: cmd.Flags().Changed("latency"),
				noCache:    noCache,
			})
			defer cleanup()

			rows := make([]batchRow, len(list))
			var inputs []score.Input
			var positions []int
			for i, h := range list {
				rows[i] = batchRow{Index: i + 1, Name: h.Name}
				in, inErr := h.input()
				if inErr != nil {
					rows[i].Error = oneLine(inErr)
					continue
				}
				inputs = append(inputs, in)
				positions = append(positions, i)
			}

			outcomes, err := predictor.PredictAll(ctx, inputs, engine.BatchOptions{
				ChunkSize:   chunkSize,
				Concurrency: concurrency,
			})
			if err != nil {
				return fmt.Errorf("batch prediction failed: %w", err)
			}
			for _, out := range outcomes {
				row := &rows[positions[out.Index]]
				if out.Err != nil {
					row.Error = oneLine(formatFieldErrors(out.Err))
					continue
				}
				row.Prediction = out.Prediction
			}

			if err = renderBatch(cmd.OutOrStdout(), output, rows); err != nil {
				return err
			}

			failed := 0
			for _, r := range rows {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return validationError(fmt.Errorf("%d of %d household(s) failed validation", failed, len(rows)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FormatTable, "output format: table, json or ndjson")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", batch.DefaultChunkSize, "households scored per worker task")
	cmd.Flags().IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "maximum tasks scored at once")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().DurationVar(&latency, "latency", 0, "artificial delay per household (default from config)")

	return cmd
}

func readHouseholds(cmd *cobra.Command, path string) ([]household, error) {
	if path == "-" {
		return loadHouseholds(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loadHouseholds(f)
}

// oneLine flattens a multi-line error for a table cell.
func oneLine(err error) string {
	text := strings.TrimPrefix(err.Error(), "invalid input:")
	fields := strings.Fields(strings.ReplaceAll(text, "\n", "; "))
	return strings.TrimPrefix(strings.Join(fields, " "), "; ")
}

func renderBatch(w io.Writer, output string, rows []batchRow) error {
	switch strings.ToLower(output) {
	case config.FormatJSON:
		return writeJSON(w, rows)
	case config.FormatNDJSON:
		return writeNDJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tSCORE\tENERGY\tWATER\tCOST\tSTATUS")
	for _, r := range rows {
		if r.Prediction == nil {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t%s\n", r.Index, dash(r.Name), r.Error)
			continue
		}
		res := r.Prediction.Result
		status := "ok"
		if r.Prediction.Cached {
			status = "cached"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%g\t%d kWh\t%d gal\t$%d\t%s\n",
			r.Index, dash(r.Name), res.PredictedScore,
			res.Savings.EnergyKWhPerMonth, res.Savings.WaterGalPerMonth, res.Savings.CostUSDPerYear, status)
	}
	return tw.Flush()
}
