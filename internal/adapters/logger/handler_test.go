package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
)

func newRecord(level slog.Level, msg string) slog.Record {
	return slog.NewRecord(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), level, msg, 0)
}

func TestPrettyHandler_Levels(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil)

	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelInfo, "html: wrote 1 file in 2ms")))
	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelWarn, "css: failed after 5ms")))

	assert.Equal(t, "html: wrote 1 file in 2ms\n! css: failed after 5ms\n", buf.String())
}

func TestPrettyHandler_Timestamps(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil).WithTimestamps()

	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelInfo, "assets/js/app.js changed, rebuilding js")))
	assert.Equal(t, "[09:26:53] assets/js/app.js changed, rebuilding js\n", buf.String())

	t.Run("zero time has no prefix", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "ready", 0)))
		assert.Equal(t, "ready\n", buf.String())
	})
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil).
		WithTimestamps().
		WithAttrs([]slog.Attr{slog.String("task", "css")}).
		WithGroup("server")

	r := newRecord(slog.LevelInfo, "listening")
	r.AddAttrs(slog.Int("port", 3000))
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Equal(t, "[09:26:53] listening server.task=css server.port=3000\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestLogger_Timestamps(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetTimestamps(true)
	lg.Info("serving dist")

	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] serving dist\n$`, buf.String())

	buf.Reset()
	lg.SetTimestamps(false)
	lg.Info("serving dist")
	assert.Equal(t, "serving dist\n", buf.String())
}
