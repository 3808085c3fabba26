package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, ""},
		{slog.LevelInfo, "message\n"},
		{slog.LevelWarn, "! message\n"},
		{slog.LevelError, "✗ message\n"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, "message")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	var h slog.Handler = logger.NewPrettyHandler(buf, nil)
	h = h.WithGroup("").WithGroup("controller").WithGroup("export")

	slog.New(h).Info("frame written", "frame", 4)

	assert.Equal(t, "frame written controller.export.frame=4\n", buf.String())
}

func TestPrettyHandler_NilWriter(t *testing.T) {
	require.NotPanics(t, func() {
		_ = logger.NewPrettyHandler(nil, nil)
	})
}

func TestPrettyHandler_GroupValuesAndQuoting(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	h := logger.NewPrettyHandler(buf, nil).WithAttrs([]slog.Attr{slog.String("session", "a b")})

	slog.New(h).Warn("frame late", slog.Group("ticket", slog.Int("frame", 7), slog.String("state", "InFlight")))

	assert.Equal(t, "! frame late session=\"a b\" ticket.frame=7 ticket.state=InFlight\n", buf.String())
}
