package processors

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// GainProcessor scales its first input: images by "opacity", audio by "gain".
// Inputs are never modified; the result is a new buffer.
type GainProcessor struct{}

// Capabilities implements ports.Processor.
func (GainProcessor) Capabilities() ports.Capabilities {
	return ports.Capabilities{Kinds: domain.Kinds(domain.KindImage, domain.KindAudio), TimeInvariant: true}
}

// Process implements ports.Processor.
func (GainProcessor) Process(_ context.Context, in ports.ProcessInput) (domain.Output, error) {
	var src domain.Output
	if len(in.Inputs) > 0 {
		src = in.Inputs[0]
	}

	switch in.Kind {
	case domain.KindImage:
		if src.Image == nil {
			return in.Format.Placeholder(domain.KindImage, 0), nil
		}
		return domain.Output{Image: scaleImage(src.Image, float32(in.Params.Float("opacity", 1)))}, nil
	case domain.KindAudio:
		if src.Audio == nil {
			return in.Format.Placeholder(domain.KindAudio, in.Frames), nil
		}
		return domain.Output{Audio: scaleAudio(src.Audio, float32(in.Params.Float("gain", 1)))}, nil
	default:
		return domain.Output{}, nil
	}
}

func scaleImage(img *domain.Image, f float32) *domain.Image {
	out := &domain.Image{Width: img.Width, Height: img.Height, Pix: make([]float32, len(img.Pix))}
	for i, v := range img.Pix {
		out.Pix[i] = v * f
	}
	return out
}

func scaleAudio(b *domain.AudioBlock, f float32) *domain.AudioBlock {
	out := &domain.AudioBlock{SampleRate: b.SampleRate, Channels: b.Channels, Samples: make([]float32, len(b.Samples))}
	for i, v := range b.Samples {
		out.Samples[i] = v * f
	}
	return out
}
