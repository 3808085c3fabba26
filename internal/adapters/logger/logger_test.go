package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/logger"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing uncolored output to a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("exported 3 frames")

	assert.Equal(t, "exported 3 frames\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("frame 2 rendered with 1 failed nodes")

	assert.Equal(t, "! frame 2 rendered with 1 failed nodes\n", buf.String())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "domain chain with metadata",
			err:        zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cache bounds must be positive"), "shards", 0),
			goldenName: "error_config",
		},
		{
			name:       "stdlib chain",
			err:        fmt.Errorf("open delta.yaml: %w", errors.New("permission denied")),
			goldenName: "error_stdlib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(errors.New("test error message"))

	out := buf.String()
	assert.Contains(t, out, `"error":"test error message"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.NotContains(t, out, "✗")
}

func TestLogger_Configure(t *testing.T) {
	t.Run("json at warn", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		require.NoError(t, lg.Configure(domain.LogConfig{Level: "warn", Format: "json"}))

		lg.Info("hidden")
		lg.Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"level":"WARN"`)
		assert.Contains(t, out, `"msg":"shown"`)
	})

	t.Run("defaults to pretty info", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		require.NoError(t, lg.Configure(domain.LogConfig{}))

		lg.Info("shown")
		assert.Equal(t, "shown\n", buf.String())
	})

	t.Run("unknown level", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		err := lg.Configure(domain.LogConfig{Level: "loud"})
		require.ErrorIs(t, err, domain.ErrInvalidConfig)

		lg.Info("still pretty")
		assert.Equal(t, "still pretty\n", buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		lg, _ := newTestLogger(t)
		err := lg.Configure(domain.LogConfig{Format: "xml"})
		require.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}
