package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/report"
	"github.com/rshade/ecopredict/internal/score"
	"github.com/rshade/ecopredict/internal/tui"
)

type predictParams struct {
	input       inputFlags
	output      string
	reportDir   string
	interactive bool
	latency     time.Duration
	noCache     bool
}

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	var params predictParams

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Compute the energy-efficiency score for a household",
		Long: `Computes a 0-100 energy-efficiency score from appliance usage, humidity,
solar generation and building characteristics, with recommendations and
the monthly savings available by reaching a perfect score.

Without input flags on an interactive terminal the prediction form opens.`,
		Example: `  # Score the default household
  ecopredict predict

  # Score a specific household as JSON
  ecopredict predict --usage 30 --humidity 70 --solar 2 --wall wood -o json

  # Write energy-report-YYYY-MM-DD.txt to ./reports
  ecopredict predict --report-dir ./reports`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, &params)
		},
	}

	params.input.bind(cmd)
	cmd.Flags().StringVarP(&params.output, "output", "o", "",
		"output format: table, json, ndjson or report (default from config)")
	cmd.Flags().StringVar(&params.reportDir, "report-dir", "", "also write a text report into this directory")
	cmd.Flags().BoolVarP(&params.interactive, "interactive", "i", false, "fill in the prediction form interactively")
	cmd.Flags().DurationVar(&params.latency, "latency", 0, "artificial prediction delay (default from config)")
	cmd.Flags().BoolVar(&params.noCache, "no-cache", false, "bypass the result cache")

	return cmd
}

func runPredict(cmd *cobra.Command, params *predictParams) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	format := strings.ToLower(params.output)
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	if !isSupportedFormat(format) {
		return validationError(fmt.Errorf("%w: %q", report.ErrUnsupportedFormat, params.output))
	}

	predictor, cleanup := openPredictor(ctx, cfg, predictorOptions{
		latency:    params.latency,
		latencySet: cmd.Flags().Changed("latency"),
		noCache:    params.noCache,
	})
	defer cleanup()

	if wantInteractive(cmd, params) {
		return runInteractivePredict(cmd, predictor, params, cfg)
	}

	in, err := params.input.input()
	if err != nil {
		return err
	}

	pred, err := predictor.Predict(ctx, in)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if err := report.Render(cmd.OutOrStdout(), format, pred); err != nil {
		return err
	}

	if params.reportDir != "" {
		path, err := report.WriteFile(params.reportDir, pred.Result, pred.CreatedAt)
		if err != nil {
			return err
		}
		cmd.PrintErrf("Report saved to %s\n", path)
	}
	return nil
}

func isSupportedFormat(format string) bool {
	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatNDJSON, config.FormatReport:
		return true
	default:
		return false
	}
}

// wantInteractive honors --interactive when given; otherwise the form opens
// only on a terminal when no input or output flags were set.
func wantInteractive(cmd *cobra.Command, params *predictParams) bool {
	if cmd.Flags().Changed("interactive") {
		return params.interactive
	}
	if params.input.anyChanged(cmd) || cmd.Flags().Changed("output") {
		return false
	}
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func runInteractivePredict(cmd *cobra.Command, predictor *engine.Predictor, params *predictParams, cfg *config.Config) error {
	ctx := cmd.Context()

	initial := score.DefaultInput()
	if params.input.anyChanged(cmd) {
		if in, err := params.input.input(); err == nil {
			initial = in
		}
	}

	reportDir := params.reportDir
	if reportDir == "" {
		reportDir = cfg.Output.ReportDir
	}

	model := tui.NewFormModel(ctx, initial, predictor.Predict)
	if reportDir != "" {
		model.WithSaveFunc(func(p *engine.Prediction) (string, error) {
			return report.WriteFile(reportDir, p.Result, p.CreatedAt)
		})
	}

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil && !isContextDone(ctx) {
		return fmt.Errorf("running prediction form: %w", err)
	}
	return nil
}

func isContextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}
