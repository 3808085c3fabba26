// Package processors provides the processor registry and the built-in
// reference processors.
package processors

import (
	"maps"
	"slices"
	"sync"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// Names of the built-in processors.
const (
	Solid = "solid"
	Tone  = "tone"
	Gain  = "gain"
	Media = "media"
)

var _ ports.ProcessorRegistry = (*Registry)(nil)

// Registry maps processor names to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	procs map[string]ports.Processor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]ports.Processor)}
}

// NewDefaultRegistry creates a registry holding every built-in processor.
// Media reads through decoder.
func NewDefaultRegistry(decoder ports.MediaDecoder) *Registry {
	r := NewRegistry()
	r.procs[Solid] = SolidProcessor{}
	r.procs[Tone] = ToneProcessor{}
	r.procs[Gain] = GainProcessor{}
	r.procs[Media] = NewMediaProcessor(decoder)
	return r
}

// Register adds p under name. Names are unique.
func (r *Registry) Register(name string, p ports.Processor) error {
	if name == "" {
		return zerr.Wrap(domain.ErrInvalidArgument, "processor name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.procs[name]; ok {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateName, "processor already registered"), "processor", name)
	}
	r.procs[name] = p
	return nil
}

// Lookup returns the processor registered under name.
func (r *Registry) Lookup(name string) (ports.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procs[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.procs))
}
