package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// With --project it creates a project-local .ecopredict/config.yaml in the
// current directory. Otherwise, it creates the global ~/.ecopredict/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

With --project, creates $PWD/.ecopredict/config.yaml. Its sections override
the global configuration whenever ecopredict runs inside that directory tree.`,
		Example: `  # Create global configuration
  ecopredict config init

  # Create project-local configuration
  ecopredict config init --project

  # Create configuration, overwriting existing
  ecopredict config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolving working directory: %w", err)
				}
				return initProjectConfig(cmd, config.ResolveProjectDir(context.Background(), cwd, ""), force)
			}
			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false, "create project-local configuration in the current directory")

	return cmd
}

// checkNotExists refuses to overwrite path unless force is set.
func checkNotExists(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

// initProjectConfig creates project-local config at projectDir/config.yaml.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")
	if err := checkNotExists(configPath, force); err != nil {
		return err
	}

	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		return fmt.Errorf("failed to create project config directory: %w", err)
	}

	cfg := config.Defaults()
	cfg.SetPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	return nil
}

// initGlobalConfig creates global config at ~/.ecopredict/config.yaml.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(dir, "config.yaml")
	if err := checkNotExists(configPath, force); err != nil {
		return err
	}

	cfg := config.Defaults()
	cfg.SetPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", configPath)
	return nil
}
