package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine/cache"
	"github.com/rshade/ecopredict/internal/history"
	"github.com/rshade/ecopredict/internal/logging"
	"github.com/rshade/ecopredict/pkg/version"
)

// StepStatus represents the outcome of a single setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step was intentionally skipped via flag.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of executing a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupOptions holds the configuration for the setup command, derived from CLI flags.
type SetupOptions struct {
	SkipHistory    bool
	NonInteractive bool
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

// dirPermBase is the permission mode for the base and standard directories.
const dirPermBase = 0o700

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case StepSuccess:
			return "[OK]"
		case StepWarning:
			return "[WARN]"
		case StepSkipped:
			return "[SKIP]"
		case StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case StepSuccess:
		return "\u2713"
	case StepWarning:
		return "!"
	case StepSkipped:
		return "-"
	case StepError:
		return "\u2717"
	default:
		return "?"
	}
}

// NewSetupCmd creates the top-level setup command that bootstraps the ecopredict environment.
func NewSetupCmd() *cobra.Command {
	var opts SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap the ecopredict environment",
		Long: `Sets up the ecopredict environment by creating directories, initializing
configuration and preparing the prediction history database.

This command is idempotent. Existing configuration files are preserved and
an existing history database is left untouched.`,
		Example: `  # Full setup
  ecopredict setup

  # CI setup (no TTY-dependent output)
  ecopredict setup --non-interactive

  # Setup without the history database
  ecopredict setup --skip-history`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"Disable TTY-dependent output (status symbols, color)")
	cmd.Flags().BoolVar(&opts.SkipHistory, "skip-history", false,
		"Skip creating the prediction history database")

	return cmd
}

// runSetup orchestrates all setup steps using a collect-and-continue pattern.
// Each step is executed sequentially. Failures in one step do not prevent
// subsequent steps from running. The function returns an error only if a
// critical step fails.
func runSetup(cmd *cobra.Command, opts *SetupOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logging.FromContext(ctx)

	// Auto-detect non-interactive mode when stdin is not a TTY
	if !opts.NonInteractive && !isTerminal(os.Stdin) {
		opts.NonInteractive = true
	}

	result := &SetupResult{}
	add := func(steps ...StepResult) {
		for _, s := range steps {
			printStep(cmd, s, opts.NonInteractive)
			result.Steps = append(result.Steps, s)
		}
	}

	add(stepDisplayVersion())

	baseDir, err := config.GetConfigDir()
	if err != nil {
		add(StepResult{
			Name:     "Directory creation",
			Status:   StepError,
			Message:  fmt.Sprintf("Cannot resolve the ecopredict directory: %v", err),
			Critical: true,
			Err:      err,
		})
	} else {
		add(stepCreateDirectories(baseDir)...)
		add(stepInitConfig(baseDir))
	}

	cfg := config.New()
	switch {
	case opts.SkipHistory:
		add(StepResult{
			Name:    "History database",
			Status:  StepSkipped,
			Message: "Skipped history database",
		})
	case !cfg.History.Enabled:
		add(StepResult{
			Name:    "History database",
			Status:  StepSkipped,
			Message: "History disabled in config",
		})
	default:
		add(stepInitHistory(ctx, cfg.History.Path))
	}
	add(stepCheckCache(cfg.Cache))

	for _, s := range result.Steps {
		if s.Status == StepError && s.Critical {
			result.HasErrors = true
		}
		if s.Status == StepWarning {
			result.HasWarnings = true
		}
	}

	printSummary(cmd, result)

	if result.HasErrors {
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Msg("setup completed with critical errors")
		return errors.New("setup failed: one or more critical steps failed")
	}

	return nil
}

// printStep outputs a single step's status line.
func printStep(cmd *cobra.Command, step StepResult, nonInteractive bool) {
	marker := formatStatus(step.Status, nonInteractive)
	cmd.Printf("%s %s\n", marker, step.Message)
}

// printSummary outputs the final completion message.
func printSummary(cmd *cobra.Command, result *SetupResult) {
	cmd.Println()
	if result.HasErrors {
		cmd.Println("Setup completed with errors. Review the messages above for remediation steps.")
	} else {
		cmd.Println("Setup complete! Run 'ecopredict predict' to get started.")
	}
}

// stepDisplayVersion reports the ecopredict version and Go runtime.
func stepDisplayVersion() StepResult {
	return StepResult{
		Name:    "Version display",
		Status:  StepSuccess,
		Message: fmt.Sprintf("ecopredict v%s (%s)", version.GetVersion(), runtime.Version()),
	}
}

// stepCreateDirectories creates the ecopredict directories under baseDir.
// Returns one StepResult per directory.
func stepCreateDirectories(baseDir string) []StepResult {
	dirs := []string{
		baseDir,
		filepath.Join(baseDir, "cache"),
		filepath.Join(baseDir, "reports"),
		filepath.Join(baseDir, "logs"),
	}

	var results []StepResult
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err == nil && info.IsDir() {
			results = append(results, StepResult{
				Name:     "Directory creation",
				Status:   StepSuccess,
				Message:  fmt.Sprintf("Directory exists: %s", d),
				Critical: true,
			})
			continue
		}

		if mkErr := os.MkdirAll(d, dirPermBase); mkErr != nil {
			results = append(results, StepResult{
				Name:   "Directory creation",
				Status: StepError,
				Message: fmt.Sprintf(
					"Failed to create %s: %v\n  Try: export ECOPREDICT_HOME=/path/to/writable/directory",
					d,
					mkErr,
				),
				Critical: true,
				Err:      mkErr,
			})
			continue
		}

		results = append(results, StepResult{
			Name:     "Directory creation",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Created %s", d),
			Critical: true,
		})
	}

	return results
}

// stepInitConfig writes the default config file if one does not exist.
func stepInitConfig(baseDir string) StepResult {
	configPath := filepath.Join(baseDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Config already exists (%s)", configPath),
			Critical: true,
		}
	}

	cfg := config.Defaults()
	cfg.SetPath(configPath)
	if err := cfg.Save(); err != nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to initialize config: %v", err),
			Critical: true,
			Err:      err,
		}
	}

	return StepResult{
		Name:     "Config initialization",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Initialized config (%s)", configPath),
		Critical: true,
	}
}

// stepInitHistory creates the history database schema. Failure is a warning:
// predictions still work without history.
func stepInitHistory(ctx context.Context, path string) StepResult {
	if path == "" {
		return StepResult{
			Name:    "History database",
			Status:  StepWarning,
			Message: "History path is not configured; predictions will not be recorded",
		}
	}

	store, err := history.OpenWithSchema(ctx, path)
	if err != nil {
		return StepResult{
			Name:    "History database",
			Status:  StepWarning,
			Message: fmt.Sprintf("Failed to prepare history database: %v", err),
			Err:     err,
		}
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return StepResult{
			Name:    "History database",
			Status:  StepWarning,
			Message: fmt.Sprintf("History database is unreadable: %v", err),
			Err:     err,
		}
	}

	return StepResult{
		Name:    "History database",
		Status:  StepSuccess,
		Message: fmt.Sprintf("History database ready (%s, %d prediction(s))", path, n),
	}
}

// stepCheckCache reports whether the result cache is usable.
func stepCheckCache(c config.CacheConfig) StepResult {
	store, err := cache.OpenFromConfig(c)
	if err != nil {
		return StepResult{
			Name:    "Result cache",
			Status:  StepWarning,
			Message: fmt.Sprintf("Result cache unavailable: %v", err),
			Err:     err,
		}
	}
	if !store.IsEnabled() {
		return StepResult{
			Name:    "Result cache",
			Status:  StepSkipped,
			Message: "Result cache disabled",
		}
	}
	return StepResult{
		Name:    "Result cache",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Result cache ready (%s)", store.GetDirectory()),
	}
}
