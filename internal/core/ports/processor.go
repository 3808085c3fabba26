package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// Capabilities declares what a processor can produce.
type Capabilities struct {
	// Kinds is the set of media kinds the processor produces.
	Kinds domain.KindSet
	// TimeInvariant processors ignore Local and Span. With only constant
	// parameters their results are shared across every time.
	TimeInvariant bool
}

// ProcessInput is everything a processor may read for one evaluation.
type ProcessInput struct {
	Component domain.ComponentID
	// Kind is the media kind requested.
	Kind domain.MediaKind
	// Inputs holds the evaluated upstream outputs in input pin order. A failed
	// or missing optional upstream is a placeholder.
	Inputs []domain.Output
	// Params are the component's parameters evaluated at Local.
	Params domain.Params
	// Local is the component-local time of an image request, or the local
	// start of an audio request.
	Local domain.Time
	// Span is the local span of an audio request.
	Span   domain.Span
	Format domain.Format
	// Frames is the number of sample frames requested for audio.
	Frames int
}

// Processor is the algorithm behind a component. Implementations must be pure
// functions of their input and must not retain buffers after returning.
//
//go:generate go run go.uber.org/mock/mockgen -source=processor.go -destination=mocks/mock_processor.go -package=mocks
type Processor interface {
	// Capabilities reports the kinds the processor produces.
	Capabilities() Capabilities
	// Process evaluates the processor.
	Process(ctx context.Context, in ProcessInput) (domain.Output, error)
}

// ProcessorRegistry resolves processor names to implementations.
type ProcessorRegistry interface {
	// Lookup returns the processor registered under name.
	Lookup(name string) (Processor, bool)
}
