package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(level string) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewTextLogger(&buf, level), &buf
}

func TestSlogLogger_EachLevel(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		emit  func(l Logger)
		level string
		attr  string
	}{
		{"debug", func(l Logger) { l.Debug(ctx, "restored session", "user", "alice") }, "DEBUG", "user=alice"},
		{"info", func(l Logger) { l.Info(ctx, "room created", "room", "team") }, "INFO", "room=team"},
		{"warn", func(l Logger) { l.Warn(ctx, "snapshot field skipped", "field", "rooms") }, "WARN", "field=rooms"},
		{"error", func(l Logger) { l.Error(ctx, "append failed", "key", "alice_bob") }, "ERROR", "key=alice_bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := captureLogger("debug")
			tc.emit(log)
			out := buf.String()
			assert.Contains(t, out, "level="+tc.level)
			assert.Contains(t, out, tc.attr)
		})
	}
}

func TestSlogLogger_WithKeepsParentAttrs(t *testing.T) {
	log, buf := captureLogger("info")
	scoped := log.With("component", "social")

	scoped.Info(context.Background(), "friend request sent", "from", "alice", "to", "bob")

	out := buf.String()
	for _, want := range []string{"component=social", `msg="friend request sent"`, "from=alice", "to=bob"} {
		assert.Contains(t, out, want)
	}
	// the parent logger is left untouched
	buf.Reset()
	log.Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":    slog.LevelDebug,
		" INFO ":   slog.LevelInfo,
		"warn":     slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"nonsense": slog.LevelInfo,
		"":         slog.LevelInfo,
	} {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNewTextLogger_FiltersBelowLevel(t *testing.T) {
	log, buf := captureLogger("warn")
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown", "room", "team")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "room=team")
}

func TestDiscard(t *testing.T) {
	require.NotPanics(t, func() {
		Discard().With("k", "v").Error(context.TODO(), "dropped")
	})
}
