package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/engine/cache"
	"github.com/rshade/ecopredict/internal/history"
	"github.com/rshade/ecopredict/internal/logging"
	"github.com/rshade/ecopredict/internal/score"
)

// predictorOptions are the command-line overrides applied on top of config.
type predictorOptions struct {
	latency    time.Duration
	latencySet bool
	noCache    bool
}

// openPredictor builds a predictor from cfg. Cache and history failures are
// logged and the predictor runs without them. The returned cleanup closes
// whatever was opened.
func openPredictor(ctx context.Context, cfg *config.Config, opts predictorOptions) (*engine.Predictor, func()) {
	log := logging.FromContext(ctx)

	latency := time.Duration(cfg.Prediction.LatencyMS) * time.Millisecond
	if opts.latencySet {
		latency = opts.latency
	}
	p := engine.NewPredictor().WithLatency(latency)

	if cfg.Cache.Enabled && !opts.noCache {
		store, err := cache.OpenFromConfig(cfg.Cache)
		if err != nil {
			log.Warn().Ctx(ctx).Err(err).Msg("result cache unavailable")
		} else {
			p.WithCache(store)
		}
	}

	cleanup := func() {}
	if cfg.History.Enabled && cfg.History.Path != "" {
		store, err := history.OpenWithSchema(ctx, cfg.History.Path)
		if err != nil {
			log.Warn().Ctx(ctx).Err(err).Str("path", cfg.History.Path).Msg("prediction history unavailable")
		} else {
			p.WithRecorder(store)
			cleanup = func() {
				if closeErr := store.Close(); closeErr != nil {
					log.Debug().Ctx(ctx).Err(closeErr).Msg("closing history")
				}
			}
		}
	}

	return p, cleanup
}

// openHistory opens the configured history database.
func openHistory(ctx context.Context) (*history.Store, error) {
	cfg := config.GetGlobalConfig()
	if cfg.History.Path == "" {
		return nil, fmt.Errorf("history path is not configured")
	}
	return history.OpenWithSchema(ctx, cfg.History.Path)
}

// formatFieldErrors renders a validation error as one indented line per field.
func formatFieldErrors(err error) error {
	fields := score.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, fields[name])
	}
	return &inputError{text: b.String(), err: err}
}

// inputError keeps the underlying validation error reachable via errors.As.
type inputError struct {
	text string
	err  error
}

func (e *inputError) Error() string { return e.text }

func (e *inputError) Unwrap() error { return e.err }

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeNDJSON writes each item as one compact JSON line.
func writeNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
