package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, `
output:
  default_format: json
  precision: 2
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, 2, target.Output.Precision)

	// Other sections should be unchanged.
	assert.Equal(t, "info", target.Logging.Level)
	assert.True(t, target.Cache.Enabled)
	assert.InDelta(t, 80.0, target.Alarm.Threshold, 1e-9)
}

func TestShallowMergeYAML_SectionIsReplacedWhole(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, `
alarm:
  threshold: 65
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.InDelta(t, 65.0, target.Alarm.Threshold, 1e-9)
	// Fields absent from the overlay section are zeroed, not merged.
	assert.Equal(t, 0, target.Alarm.IntervalSeconds)
	assert.Empty(t, target.Alarm.Source)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, `
dashboard:
  theme: dark
server:
  address: ":9090"
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, ":9090", target.Server.Address)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, "# nothing here\n")

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.Defaults().Output, target.Output)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	require.Error(t, config.ShallowMergeYAML(nil, "x.yaml"))
	require.Error(t, config.ShallowMergeYAML(config.Defaults(), filepath.Join(t.TempDir(), "missing.yaml")))

	bad := writeOverlay(t, "output: [unclosed")
	require.Error(t, config.ShallowMergeYAML(config.Defaults(), bad))

	wrongType := writeOverlay(t, "cache:\n  ttl_seconds: forever\n")
	require.Error(t, config.ShallowMergeYAML(config.Defaults(), wrongType))
}
