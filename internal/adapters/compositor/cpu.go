// Package compositor implements the CPU compositing backend.
package compositor

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compositor = (*CPU)(nil)

// CPU blends on the calling machine's processor. Every call runs on the
// backend's execution queue.
type CPU struct {
	queue *Queue
}

// NewCPU creates a CPU compositor with its own execution queue.
func NewCPU() *CPU {
	return &CPU{queue: NewQueue()}
}

// Close shuts the execution queue down. Later calls fail with ErrQueueClosed.
func (c *CPU) Close() {
	c.queue.Close()
}

// Composite blends req.Layers bottom to top over a transparent canvas of the
// request format.
func (c *CPU) Composite(ctx context.Context, req ports.CompositeRequest) (*domain.Image, error) {
	if req.Format.Width <= 0 || req.Format.Height <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "output size must be positive"), "width", req.Format.Width)
	}

	for _, l := range req.Layers {
		if l.Image == nil {
			continue
		}
		if err := l.Image.Validate(); err != nil {
			failed := zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "layer is malformed"), "component", l.Component.String())
			return nil, zerr.With(failed, "cause", err.Error())
		}
	}

	var out *domain.Image
	err := c.queue.Do(ctx, func() {
		out = domain.NewImage(req.Format.Width, req.Format.Height)
		for _, l := range req.Layers {
			draw(out, l.Image, l.Placement)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Mix sums req.Tracks into a block of req.Frames sample frames.
func (c *CPU) Mix(ctx context.Context, req ports.MixRequest) (*domain.AudioBlock, error) {
	if req.Frames < 0 || req.Format.Channels <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "audio block shape is invalid"), "frames", req.Frames)
	}

	for _, t := range req.Tracks {
		if t.Audio == nil {
			continue
		}
		if err := t.Audio.Validate(); err != nil {
			failed := zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "track is malformed"), "component", t.Component.String())
			return nil, zerr.With(failed, "cause", err.Error())
		}
	}

	var out *domain.AudioBlock
	err := c.queue.Do(ctx, func() {
		out = domain.NewAudioBlock(req.Format.SampleRate, req.Format.Channels, req.Frames)
		for _, t := range req.Tracks {
			mix(out, t)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
