package compositor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/compositor"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

var format = domain.Format{Width: 4, Height: 4, SampleRate: 1000, Channels: 2}

func solid(c domain.Color) *domain.Image {
	return domain.SolidImage(format.Width, format.Height, c)
}

func layer(img *domain.Image, mode domain.BlendMode, opacity float32) ports.Layer {
	p := domain.DefaultPlacement()
	p.Blend = mode
	p.Opacity = opacity
	return ports.Layer{Image: img, Placement: p}
}

func assertColor(t *testing.T, want, got domain.Color) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "channel %d of %v", i, got)
	}
}

func TestCPU_Composite_BlendModes(t *testing.T) {
	tests := []struct {
		name   string
		bottom domain.Color
		top    domain.Color
		mode   domain.BlendMode
		alpha  float32
		want   domain.Color
	}{
		{
			name:   "normal at half opacity",
			bottom: domain.Color{1, 0, 0, 1},
			top:    domain.Color{0, 0, 1, 1},
			mode:   domain.BlendNormal,
			alpha:  0.5,
			want:   domain.Color{0.5, 0, 0.5, 1},
		},
		{
			name:   "add clamps",
			bottom: domain.Color{0.75, 0.25, 0, 1},
			top:    domain.Color{0.5, 0.25, 0, 1},
			mode:   domain.BlendAdd,
			alpha:  1,
			want:   domain.Color{1, 0.5, 0, 1},
		},
		{
			name:   "multiply",
			bottom: domain.Color{1, 0, 1, 1},
			top:    domain.Color{1, 1, 0, 1},
			mode:   domain.BlendMultiply,
			alpha:  1,
			want:   domain.Color{1, 0, 0, 1},
		},
		{
			name:   "screen",
			bottom: domain.Color{0, 0.5, 0, 1},
			top:    domain.Color{0.5, 0.5, 0, 1},
			mode:   domain.BlendScreen,
			alpha:  1,
			want:   domain.Color{0.5, 0.75, 0, 1},
		},
		{
			name:   "transparent layer is skipped",
			bottom: domain.Color{0, 1, 0, 1},
			top:    domain.Color{1, 1, 1, 1},
			mode:   domain.BlendNormal,
			alpha:  0,
			want:   domain.Color{0, 1, 0, 1},
		},
	}

	c := compositor.NewCPU()
	t.Cleanup(c.Close)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Composite(context.Background(), ports.CompositeRequest{
				Format: format,
				Layers: []ports.Layer{
					layer(solid(tt.bottom), domain.BlendNormal, 1),
					layer(solid(tt.top), tt.mode, tt.alpha),
				},
			})
			require.NoError(t, err)
			assertColor(t, tt.want, out.At(1, 2))
		})
	}
}

func TestCPU_Composite_Offset(t *testing.T) {
	c := compositor.NewCPU()
	t.Cleanup(c.Close)

	red := domain.SolidImage(2, 2, domain.Color{1, 0, 0, 1})
	shifted := func(x, y int) ports.Layer {
		l := layer(red, domain.BlendNormal, 1)
		l.Placement.OffsetX, l.Placement.OffsetY = x, y
		return l
	}

	out, err := c.Composite(context.Background(), ports.CompositeRequest{
		Format: format,
		Layers: []ports.Layer{shifted(3, 3), shifted(-1, -1)},
	})
	require.NoError(t, err)

	opaque := domain.Color{1, 0, 0, 1}
	empty := domain.Color{}
	assertColor(t, opaque, out.At(3, 3))
	assertColor(t, opaque, out.At(0, 0))
	assertColor(t, empty, out.At(1, 1))
	assertColor(t, empty, out.At(2, 2))
	assertColor(t, empty, out.At(3, 2))
}

func TestCPU_Composite_Empty(t *testing.T) {
	c := compositor.NewCPU()
	t.Cleanup(c.Close)

	out, err := c.Composite(context.Background(), ports.CompositeRequest{Format: format})
	require.NoError(t, err)
	assert.Equal(t, domain.NewImage(4, 4), out)

	_, err = c.Composite(context.Background(), ports.CompositeRequest{})
	require.ErrorIs(t, err, domain.ErrCompositeFailed)
}

func TestCPU_Mix(t *testing.T) {
	c := compositor.NewCPU()
	t.Cleanup(c.Close)

	stereo := &domain.AudioBlock{SampleRate: 1000, Channels: 2, Samples: []float32{1, 1, 1, 1}}
	mono := &domain.AudioBlock{SampleRate: 1000, Channels: 1, Samples: []float32{1, 2}}

	out, err := c.Mix(context.Background(), ports.MixRequest{
		Format: format,
		Frames: 4,
		Tracks: []ports.Track{
			{Audio: stereo, Offset: 0, Gain: 0.5},
			{Audio: mono, Offset: 3, Gain: 1},
			{Audio: mono, Offset: -1, Gain: 0.25},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, out.SampleRate)
	assert.Equal(t, []float32{1, 1, 0.5, 0.5, 0, 0, 1, 1}, out.Samples)
}

func TestCPU_Closed(t *testing.T) {
	c := compositor.NewCPU()
	c.Close()
	c.Close()

	_, err := c.Composite(context.Background(), ports.CompositeRequest{Format: format})
	require.ErrorIs(t, err, domain.ErrQueueClosed)
	_, err = c.Mix(context.Background(), ports.MixRequest{Format: format, Frames: 1})
	require.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestCPU_MalformedBuffers(t *testing.T) {
	c := compositor.NewCPU()
	t.Cleanup(c.Close)

	_, err := c.Composite(context.Background(), ports.CompositeRequest{
		Format: format,
		Layers: []ports.Layer{{Image: &domain.Image{Width: 4, Height: 4}, Placement: domain.DefaultPlacement()}},
	})
	require.ErrorIs(t, err, domain.ErrCompositeFailed)

	_, err = c.Mix(context.Background(), ports.MixRequest{
		Format: format,
		Frames: 2,
		Tracks: []ports.Track{{Audio: &domain.AudioBlock{SampleRate: 1000, Channels: 2, Samples: []float32{1, 1, 1}}, Gain: 1}},
	})
	require.ErrorIs(t, err, domain.ErrCompositeFailed)

	out, err := c.Composite(context.Background(), ports.CompositeRequest{Format: format})
	require.NoError(t, err)
	assert.Equal(t, domain.NewImage(4, 4), out)
}
