package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/ecopredict/internal/cli"
	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.Equal(t, "ecopredict", root.Use)
	})
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"valid input", []string{"validate", "--usage", "50"}, 0},
		{"out of range input", []string{"validate", "--usage", "150"}, cli.ExitCodeValidation},
		{"unknown command", []string{"frobnicate"}, cli.ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ECOPREDICT_HOME", t.TempDir())
			t.Setenv("ECOPREDICT_LOG_LEVEL", "error")
			t.Cleanup(config.ResetGlobalConfigForTest)

			assert.Equal(t, tt.want, run(t.Context(), tt.args))
		})
	}
}

func TestExtractExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error returns 0", nil, 0},
		{"generic error", errors.New("boom"), cli.ExitCodeError},
		{"validation error", &cli.ExitError{Code: cli.ExitCodeValidation, Err: errors.New("bad")}, cli.ExitCodeValidation},
		{"wrapped exit error", fmt.Errorf("outer: %w", &cli.ExitError{Code: 3}), 3},
		{"joined exit error", errors.Join(errors.New("outer"), &cli.ExitError{Code: 2}), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractExitCode(tt.err))
		})
	}
}
