package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "nested", "system.log")

	t.Run("should create directory and write entries", func(t *testing.T) {
		l, err := New(LevelDebug, logPath, false)
		require.NoError(t, err)

		l.Info("stream opened", "stream_id", "s-1")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "stream opened")
		assert.Contains(t, string(content), "s-1")
	})

	t.Run("should truncate when persist is false", func(t *testing.T) {
		require.NoError(t, os.WriteFile(logPath, []byte("old entry\n"), 0644))

		l, err := New(LevelInfo, logPath, false)
		require.NoError(t, err)
		l.Info("fresh")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "old entry")
		assert.Contains(t, string(content), "fresh")
	})

	t.Run("should append when persist is true", func(t *testing.T) {
		require.NoError(t, os.WriteFile(logPath, []byte("old entry\n"), 0644))

		l, err := New(LevelInfo, logPath, true)
		require.NoError(t, err)
		l.Info("appended")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "old entry")
		assert.Contains(t, string(content), "appended")
	})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(LevelWarn, &buf)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible warn", "line", 3)
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
	assert.Contains(t, out, "WARN")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		assert.Nil(t, l.With("k", "v"))
		assert.NoError(t, l.Close())
	})
}

func TestDefaultLogger(t *testing.T) {
	prev := SetDefault(nil)
	t.Cleanup(func() { SetDefault(prev) })

	t.Run("should be a no-op before initialization", func(t *testing.T) {
		assert.Nil(t, WithComponent("stream"))
		assert.NotPanics(t, func() {
			Info("nothing %d", 1)
			Warn("nothing")
		})
	})

	t.Run("should tag component loggers", func(t *testing.T) {
		var buf bytes.Buffer
		SetDefault(NewWriter(LevelDebug, &buf))

		WithComponent("stream").Warn("skipping malformed line", "line", "{oops")
		Info("formatted %s", "message")

		out := buf.String()
		assert.Contains(t, out, "component")
		assert.Contains(t, out, "stream")
		assert.Contains(t, out, "skipping malformed line")
		assert.Contains(t, out, "formatted message")
	})

	t.Run("should redirect output", func(t *testing.T) {
		var first, second bytes.Buffer
		SetDefault(NewWriter(LevelDebug, &first))
		SetOutput(&second)

		Error("redirected")
		assert.Empty(t, first.String())
		assert.Contains(t, second.String(), "redirected")
	})
}
