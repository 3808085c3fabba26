// Package renderer evaluates a resolved project view into images and audio.
package renderer

import (
	"cmp"
	"context"
	"slices"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// NodeFailure is a node-local failure that was replaced by a placeholder.
type NodeFailure struct {
	// Component is zero for a failure of the composite itself.
	Component domain.ComponentID
	Err       error
}

// Frame is an evaluated image.
type Frame struct {
	At       domain.Time
	Revision uint64
	Image    *domain.Image
	Failures []NodeFailure
}

// AudioChunk is an evaluated block of audio.
type AudioChunk struct {
	Span     domain.Span
	Revision uint64
	Audio    *domain.AudioBlock
	Failures []NodeFailure
}

// Renderer evaluates the component graph lazily and memoizes every node
// result in the shared result cache.
type Renderer struct {
	registry   ports.ProcessorRegistry
	compositor ports.Compositor
	cache      ports.ResultCache
	tracer     ports.Tracer
	format     domain.Format
	workers    *semaphore.Weighted
}

// New creates a Renderer producing media of the given format. At most workers
// processor calls run at the same time.
func New(
	registry ports.ProcessorRegistry,
	compositor ports.Compositor,
	cache ports.ResultCache,
	tracer ports.Tracer,
	format domain.Format,
	workers int,
) *Renderer {
	return &Renderer{
		registry:   registry,
		compositor: compositor,
		cache:      cache,
		tracer:     tracer,
		format:     format,
		workers:    semaphore.NewWeighted(int64(max(workers, 1))),
	}
}

// Format returns the media format the renderer produces.
func (r *Renderer) Format() domain.Format {
	return r.format
}

// RenderFrame evaluates the image at global time at.
//
// Node failures do not fail the call: they are reported in Frame.Failures and
// the failed node contributes a transparent placeholder. Components whose
// timing did not resolve are reported there too. The call itself
// fails only on cancellation or when a touched component lacks a required
// input.
func (r *Renderer) RenderFrame(ctx context.Context, view *domain.View, at domain.Time) (*Frame, error) {
	ctx, span := r.tracer.Start(ctx, "renderer.frame", ports.WithAttribute("at", at.String()))
	defer span.End()

	out, failures, err := r.render(ctx, view, request{kind: domain.KindImage, at: at})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("failures", len(failures))
	return &Frame{At: at, Revision: view.Revision(), Image: out.Image, Failures: failures}, nil
}

// RenderAudio evaluates the audio covering the global span.
func (r *Renderer) RenderAudio(ctx context.Context, view *domain.View, span domain.Span) (*AudioChunk, error) {
	if span.Empty() {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "audio span is empty"), "span", span.String())
	}
	ctx, sp := r.tracer.Start(ctx, "renderer.audio", ports.WithAttribute("span", span.String()))
	defer sp.End()

	req := request{
		kind:   domain.KindAudio,
		span:   span,
		frames: domain.SamplesIn(span.Length(), r.format.SampleRate),
	}
	out, failures, err := r.render(ctx, view, req)
	if err != nil {
		sp.RecordError(err)
		return nil, err
	}
	sp.SetAttribute("failures", len(failures))
	return &AudioChunk{Span: span, Revision: view.Revision(), Audio: out.Audio, Failures: failures}, nil
}

func (r *Renderer) render(ctx context.Context, view *domain.View, req request) (domain.Output, []NodeFailure, error) {
	p, err := r.newPlan(view, req)
	if err != nil {
		return domain.Output{}, nil, err
	}

	ev := &evaluation{r: r, plan: p, failures: slices.Clone(p.failures)}
	defer ev.release()

	out, _, err := ev.cached(ctx, r.compositeKey(p), ev.composite)
	if err != nil {
		return domain.Output{}, nil, err
	}

	failures := ev.takeFailures()
	slices.SortStableFunc(failures, func(a, b NodeFailure) int {
		return cmp.Compare(a.Component, b.Component)
	})
	return out, failures, nil
}

// compositeKey fingerprints the final result from the top-level node keys and
// how each is placed.
func (r *Renderer) compositeKey(p *plan) domain.Fingerprint {
	b := domain.NewKeyBuilder("composite").
		Tag(byte(p.req.kind)).
		Format(r.format).
		Int64(int64(len(p.top)))
	if p.req.kind == domain.KindAudio {
		b.Int64(int64(p.req.frames))
	}
	for _, n := range p.top {
		b.Fingerprint(n.key).Placement(n.comp.Placement)
		if p.req.kind == domain.KindAudio {
			b.Int64(int64(trackOffset(p, n, r.format)))
		}
	}
	return b.Sum()
}

// trackOffset is where an audio node starts, in sample frames from the
// request start.
func trackOffset(p *plan, n *node, f domain.Format) int {
	return domain.SamplesIn(n.global.Start-p.req.span.Start, f.SampleRate)
}
