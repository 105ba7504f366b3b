package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json output at requested level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(Config{Level: "warn", Format: FormatJSON}, &buf)

		l.Info().Msg("hidden")
		l.Warn().Str("k", "v").Msg("shown")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["message"])
		assert.Equal(t, "v", entry["k"])
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(Config{Level: "loud"}, &buf)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("console format is human readable", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(Config{Level: "debug", Format: FormatConsole}, &buf)
		l.Debug().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.NotContains(t, buf.String(), `"message"`)
	})
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "ecopredict.log")
		result := NewLoggerWithPath(Config{Level: "info", Output: OutputFile, File: path})
		t.Cleanup(func() { _ = result.Close() })

		assert.True(t, result.UsingFile)
		assert.False(t, result.FallbackUsed)
		assert.Equal(t, path, result.FilePath)
		assert.FileExists(t, path)
	})

	t.Run("missing file falls back to stderr", func(t *testing.T) {
		result := NewLoggerWithPath(Config{Output: OutputFile})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		assert.NoError(t, result.Close())
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "info"}, &buf)
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("via context")
	assert.Contains(t, buf.String(), "via context")

	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil context is tolerated
}

func TestTraceID(t *testing.T) {
	id := GenerateTraceID()
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	ctx := ContextWithTraceID(context.Background(), id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))
	assert.NotEqual(t, id, GetOrGenerateTraceID(context.Background()))

	var buf bytes.Buffer
	l := NewLogger(Config{Level: "info"}, &buf).Hook(TraceHook{})
	l.Info().Ctx(ctx).Msg("traced")
	assert.Contains(t, buf.String(), id)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := ComponentLogger(NewLogger(Config{Level: "info"}, &buf), "engine")
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}
