package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// MediaDecoder supplies decoded external media.
//
//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock_media.go -package=mocks
type MediaDecoder interface {
	// DecodeFrame returns the frame of source nearest to at.
	DecodeFrame(ctx context.Context, source string, at domain.Time, format domain.Format) (*domain.Image, error)
	// DecodeAudio returns the samples of source covering span.
	DecodeAudio(ctx context.Context, source string, span domain.Span, format domain.Format) (*domain.AudioBlock, error)
}

// Frame is one exported frame with the audio that plays during it.
type Frame struct {
	Index int64
	At    domain.Time
	Image *domain.Image
	Audio *domain.AudioBlock
}

// Encoder consumes exported frames in time order.
type Encoder interface {
	// Accepts reports whether the encoder can take media of the given format.
	Accepts(format domain.Format) error
	// WriteFrame hands over one frame. Frames arrive strictly by increasing index.
	WriteFrame(ctx context.Context, frame Frame) error
	// Finish flushes the encoder after the last frame.
	Finish(ctx context.Context) error
}
