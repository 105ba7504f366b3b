package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/rshade/ecopredict/internal/logging"
)

// Reload loads path the same way New does: file over defaults, then
// environment overrides and derived paths.
func Reload(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.fillPaths()
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Watch monitors path and calls onChange with the reloaded Config each time
// the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched so atomic saves (write temp, rename) are
// seen. A reload that fails is logged and the previous config stays active.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	logger.Info().Str("component", "config").Str("path", abs).Msg("watching config for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, loadErr := Reload(abs)
			if loadErr != nil {
				logger.Error().Str("component", "config").Str("path", abs).Err(loadErr).
					Msg("config reload failed, keeping previous config")
				continue
			}

			logger.Info().Str("component", "config").Str("path", abs).Msg("config reloaded")
			onChange(cfg)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Str("component", "config").Err(watchErr).Msg("config watcher error")
		}
	}
}
