package cas_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/cas"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

var format = domain.Format{Width: 2, Height: 2, SampleRate: 100, Channels: 1}

func TestStore_WriteAndRead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore(root)
	require.NoError(t, store.Accepts(format))

	red := domain.SolidImage(2, 2, domain.Color{1, 0, 0, 1})
	blue := domain.SolidImage(2, 2, domain.Color{0, 0, 1, 1})
	tone := &domain.AudioBlock{SampleRate: 100, Channels: 1, Samples: []float32{0.5, -0.5}}

	ctx := context.Background()
	frames := []ports.Frame{
		{Index: 0, At: 0, Image: red, Audio: tone},
		{Index: 1, At: 10, Image: red, Audio: tone},
		{Index: 2, At: 20, Image: blue},
	}
	for _, f := range frames {
		require.NoError(t, store.WriteFrame(ctx, f))
	}
	require.NoError(t, store.Finish(ctx))

	assert.Equal(t, 3, store.Objects(), "repeated frames share objects")

	m, err := cas.ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, format, m.Format)
	require.Len(t, m.Frames, 3)
	assert.Equal(t, m.Frames[0].Image, m.Frames[1].Image)
	assert.NotEqual(t, m.Frames[0].Image, m.Frames[2].Image)
	assert.Empty(t, m.Frames[2].Audio)
	assert.Equal(t, domain.Time(20), m.Frames[2].At)

	img, err := cas.ReadImage(root, m.Frames[2].Image)
	require.NoError(t, err)
	assert.Equal(t, blue, img)

	audio, err := cas.ReadAudio(root, m.Frames[0].Audio)
	require.NoError(t, err)
	assert.Equal(t, tone, audio)
}

func TestStore_Accepts(t *testing.T) {
	t.Parallel()

	err := cas.NewStore(t.TempDir()).Accepts(domain.Format{Width: 2, Height: 2})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestStore_Corrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore(root)
	require.NoError(t, store.Accepts(format))
	require.NoError(t, store.WriteFrame(context.Background(), ports.Frame{Image: domain.NewImage(2, 2)}))
	require.NoError(t, store.Finish(context.Background()))

	m, err := cas.ReadManifest(root)
	require.NoError(t, err)
	hash := m.Frames[0].Image

	path := filepath.Join(root, "objects", hash[:2], hash)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err = cas.ReadImage(root, hash)
	require.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestStore_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := cas.NewStore(t.TempDir())
	require.ErrorIs(t, store.WriteFrame(ctx, ports.Frame{}), context.Canceled)
	require.ErrorIs(t, store.Finish(ctx), context.Canceled)
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()

	_, err := cas.ReadManifest(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}
