package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// Layer is one image placed into a composite.
type Layer struct {
	Component domain.ComponentID
	Image     *domain.Image
	Placement domain.Placement
}

// CompositeRequest layers images bottom to top.
type CompositeRequest struct {
	Format domain.Format
	Layers []Layer
}

// Track is one audio block mixed into the output.
type Track struct {
	Component domain.ComponentID
	Audio     *domain.AudioBlock
	// Offset is where the block starts, in sample frames from the request start.
	Offset int
	Gain   float32
}

// MixRequest sums tracks into a block of Frames sample frames.
type MixRequest struct {
	Format domain.Format
	Frames int
	Tracks []Track
}

// Compositor is the compositing backend. Its identity (GPU, CPU) is opaque to
// the engine; calls may be queued and awaited.
//
//go:generate go run go.uber.org/mock/mockgen -source=compositor.go -destination=mocks/mock_compositor.go -package=mocks
type Compositor interface {
	// Composite blends the layers into one image.
	Composite(ctx context.Context, req CompositeRequest) (*domain.Image, error)
	// Mix sums the tracks into one audio block.
	Mix(ctx context.Context, req MixRequest) (*domain.AudioBlock, error)
}
