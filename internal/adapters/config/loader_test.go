package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/config"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load_Defaults(t *testing.T) {
	cfg, err := newLoader(t).Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoader_Load_Overrides(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
output:
  width: 1920
  height: 1080
  frameRate: 30000/1001
solver:
  tolerance: 0.5
cache:
  maxBytes: 1048576
controller:
  exportRate: 12.5
history:
  depth: 7
log:
  format: json
`)

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	want := domain.DefaultConfig()
	want.Output.Width = 1920
	want.Output.Height = 1080
	want.Output.FrameRate = domain.FrameRate{Num: 30000, Den: 1001}
	want.Solver.Tolerance = domain.FlicksPerSecond / 2
	want.Cache.MaxBytes = 1 << 20
	want.Controller.ExportRate = 12.5
	want.History.Depth = 7
	want.Log.Format = "json"
	assert.Equal(t, want, cfg)
}

func TestLoader_Load_Discovery(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "output:\n  frameRate: 24\n")
	nested := filepath.Join(root, "shots", "a")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, domain.FrameRate{Num: 24, Den: 1}, cfg.Output.FrameRate)

	path, ok := config.Find(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, domain.ConfigFileName), path)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
		key     string
	}{
		{
			name:    "unknown key",
			content: "output:\n  colour: red\n",
			want:    domain.ErrConfigRead,
			key:     "cause",
		},
		{
			name:    "malformed yaml",
			content: "output: [",
			want:    domain.ErrConfigRead,
			key:     "cause",
		},
		{
			name:    "bad frame rate",
			content: "output:\n  frameRate: fast\n",
			want:    domain.ErrInvalidConfig,
			key:     "value",
		},
		{
			name:    "out of range",
			content: "renderer:\n  workers: 0\n",
			want:    domain.ErrInvalidConfig,
			key:     "workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := createFile(t, dir, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(dir)
			require.ErrorIs(t, err, tt.want)

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			assert.Equal(t, path, zErr.Metadata()["path"])
			assert.Contains(t, zErr.Metadata(), tt.key)
		})
	}
}

func TestLoader_Load_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, "")

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Output.FrameRate = domain.FrameRate{Num: 30000, Den: 1001}
	cfg.Solver.Tolerance = domain.Seconds(0.25)

	data, err := config.Marshal(cfg)
	require.NoError(t, err)

	got, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
