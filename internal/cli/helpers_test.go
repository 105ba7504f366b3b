package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rshade/ecopredict/internal/cli"
	"github.com/rshade/ecopredict/internal/config"
)

// setupCLITest isolates a test in a fresh ECOPREDICT_HOME and returns it.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ECOPREDICT_HOME", home)
	t.Setenv("ECOPREDICT_PROJECT_DIR", "")
	t.Setenv("ECOPREDICT_LOG_LEVEL", "error")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// executeCLI runs the root command with args and returns stdout and stderr.
func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
