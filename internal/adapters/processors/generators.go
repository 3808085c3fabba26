package processors

import (
	"context"
	"math"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// SolidProcessor fills the frame with its "color" parameter.
type SolidProcessor struct{}

// Capabilities implements ports.Processor.
func (SolidProcessor) Capabilities() ports.Capabilities {
	return ports.Capabilities{Kinds: domain.Kinds(domain.KindImage), TimeInvariant: true}
}

// Process implements ports.Processor.
func (SolidProcessor) Process(_ context.Context, in ports.ProcessInput) (domain.Output, error) {
	c := in.Params.Color("color", domain.Color{0, 0, 0, 1})
	return domain.Output{Image: domain.SolidImage(in.Format.Width, in.Format.Height, c)}, nil
}

// ToneProcessor generates a sine wave with "frequency" in hertz and
// "amplitude" parameters. The phase follows local time, so a trimmed clip
// continues the same waveform.
type ToneProcessor struct{}

// Capabilities implements ports.Processor.
func (ToneProcessor) Capabilities() ports.Capabilities {
	return ports.Capabilities{Kinds: domain.Kinds(domain.KindAudio)}
}

// Process implements ports.Processor.
func (ToneProcessor) Process(_ context.Context, in ports.ProcessInput) (domain.Output, error) {
	freq := in.Params.Float("frequency", 440)
	amp := in.Params.Float("amplitude", 0.25)

	block := domain.NewAudioBlock(in.Format.SampleRate, in.Format.Channels, in.Frames)
	start := in.Span.Start.Seconds()
	rate := float64(in.Format.SampleRate)
	for i := range in.Frames {
		v := float32(amp * math.Sin(2*math.Pi*freq*(start+float64(i)/rate)))
		for c := range in.Format.Channels {
			block.Samples[i*in.Format.Channels+c] = v
		}
	}
	return domain.Output{Audio: block}, nil
}
