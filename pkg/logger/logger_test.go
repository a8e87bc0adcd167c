package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { defaultLogger = prev })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestContextAttributes(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUser(ctx, "user-9")
	ctx = ContextWithJob(ctx, "script-7", "keyframes")

	InfoContext(ctx, "frame done", "sequence", 3)

	line := lastLine(t, buf)
	assert.Equal(t, "frame done", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "user-9", line["user"])
	assert.Equal(t, "script-7", line["script_id"])
	assert.Equal(t, "keyframes", line["job"])
	assert.EqualValues(t, 3, line["sequence"])
}

func TestDetachKeepsRequestIDOnly(t *testing.T) {
	parent, cancel := context.WithCancel(ContextWithRequestID(context.Background(), "req-2"))
	parent = ContextWithUser(parent, "someone")
	cancel()

	detached := Detach(parent)
	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-2", GetRequestID(detached))
	assert.Nil(t, detached.Value(UserKey))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWriter(t *testing.T) {
	t.Run("file output creates directory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Output = "file"
		cfg.FilePath = filepath.Join(t.TempDir(), "nested", "app.log")

		l, err := New(cfg)
		require.NoError(t, err)
		l.Info("hello")
		assert.DirExists(t, filepath.Dir(cfg.FilePath))
	})

	t.Run("unknown output", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Output = "syslog"
		_, err := New(cfg)
		assert.Error(t, err)
	})
}

func TestShortSource(t *testing.T) {
	attr := shortSource(nil, slog.Any(slog.SourceKey, &slog.Source{File: "/src/storyforge/pkg/retry/retry.go", Line: 42}))
	assert.Equal(t, "retry/retry.go:42", attr.Value.String())

	other := slog.String("msg", "x")
	assert.Equal(t, other, shortSource(nil, other))
}
