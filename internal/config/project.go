package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rshade/ecopredict/internal/logging"
)

// projectDirName is the directory holding a household's local overlay config.
const projectDirName = ".ecopredict"

// ResolveProjectDir determines the local .ecopredict directory. It checks,
// in order: flagValue (--project-dir), ECOPREDICT_PROJECT_DIR, then a walk
// up from startDir looking for an existing .ecopredict directory.
//
// Returns an absolute path, or "" when nothing is found. Nothing is created.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv("ECOPREDICT_PROJECT_DIR"); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	if startDir == "" {
		return ""
	}

	home, _ := GetConfigDir()
	dir := toAbsProjectDir(ctx, startDir)
	for {
		if dir != home {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
		parent := filepath.Dir(filepath.Dir(dir))
		if parent == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Join(parent, projectDirName)
	}
}

// NewWithProjectDir loads the global config, then shallow-merges the
// project-local config.yaml on top. With an empty projectDir it behaves
// exactly like New.
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	cfg := New()

	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		// Missing project config is not an error.
		return cfg
	}

	if err := ShallowMergeYAML(cfg, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return New()
	}

	return cfg
}

// toAbsProjectDir converts dir to an absolute path ending in .ecopredict.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
