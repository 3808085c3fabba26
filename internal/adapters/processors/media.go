package processors

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// MediaProcessor plays back the external media named by its "source"
// parameter at the component's local time.
type MediaProcessor struct {
	decoder ports.MediaDecoder
}

// NewMediaProcessor creates a MediaProcessor reading through decoder.
func NewMediaProcessor(decoder ports.MediaDecoder) *MediaProcessor {
	return &MediaProcessor{decoder: decoder}
}

// Capabilities implements ports.Processor.
func (p *MediaProcessor) Capabilities() ports.Capabilities {
	return ports.Capabilities{Kinds: domain.Kinds(domain.KindImage, domain.KindAudio)}
}

// Process implements ports.Processor.
func (p *MediaProcessor) Process(ctx context.Context, in ports.ProcessInput) (domain.Output, error) {
	source := in.Params.Text("source", "")
	if source == "" {
		return domain.Output{}, zerr.Wrap(domain.ErrInvalidArgument, "media source is not set")
	}

	switch in.Kind {
	case domain.KindImage:
		img, err := p.decoder.DecodeFrame(ctx, source, in.Local, in.Format)
		if err != nil {
			return domain.Output{}, decodeFailed(source, err)
		}
		return domain.Output{Image: img}, nil
	case domain.KindAudio:
		block, err := p.decoder.DecodeAudio(ctx, source, in.Span, in.Format)
		if err != nil {
			return domain.Output{}, decodeFailed(source, err)
		}
		return domain.Output{Audio: block}, nil
	default:
		return domain.Output{}, nil
	}
}

func decodeFailed(source string, err error) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrDecodeFailed, "cannot decode media"), "source", source), "cause", err.Error())
}
