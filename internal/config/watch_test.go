package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/config"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Setenv("ECOPREDICT_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alarm:\n  threshold: 80\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(c *config.Config) { reloaded <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("alarm:\n  threshold: 65\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.InDelta(t, 65.0, cfg.Alarm.Threshold, 1e-9)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_InvalidReloadKeepsPrevious(t *testing.T) {
	t.Setenv("ECOPREDICT_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alarm:\n  threshold: 80\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(path, []byte("alarm:\n  threshold: 150\n"), 0o600)
	}()

	err := config.Watch(ctx, path, func(*config.Config) { called <- struct{}{} })
	require.NoError(t, err)
	assert.Empty(t, called)
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := config.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.yaml"), func(*config.Config) {})
	require.Error(t, err)
}

func TestReload_AppliesEnv(t *testing.T) {
	t.Setenv("ECOPREDICT_HOME", t.TempDir())
	t.Setenv("ECOPREDICT_SERVER_ADDRESS", ":7070")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  default_format: json\n"), 0o600))

	cfg, err := config.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.NotEmpty(t, cfg.History.Path)
}
