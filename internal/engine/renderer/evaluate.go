package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// computeFunc produces a node result. tainted results were computed from a
// placeholder that stands in for a failure and must not be cached.
type computeFunc func(ctx context.Context) (out domain.Output, tainted bool, err error)

// evaluation is the state of one request.
type evaluation struct {
	r    *Renderer
	plan *plan

	mu       sync.Mutex
	failures []NodeFailure
	handles  []ports.Cached
}

func (ev *evaluation) fail(c domain.ComponentID, err error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.failures = append(ev.failures, NodeFailure{Component: c, Err: err})
}

func (ev *evaluation) hold(h ports.Cached) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.handles = append(ev.handles, h)
}

func (ev *evaluation) takeFailures() []NodeFailure {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.failures
}

// release drops every cache handle taken during the request.
func (ev *evaluation) release() {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	for _, h := range ev.handles {
		h.Release()
	}
	ev.handles = nil
}

// cached runs compute through the result cache under key. A tainted result is
// returned to this request only; other requests that shared the flight see
// ErrUpstreamFailed and compute for themselves.
func (ev *evaluation) cached(ctx context.Context, key domain.Fingerprint, compute computeFunc) (domain.Output, bool, error) {
	var stash atomic.Pointer[domain.Output]
	h, err := ev.r.cache.GetOrCompute(ctx, key, func(ctx context.Context) (domain.Output, error) {
		out, tainted, err := compute(ctx)
		if err != nil {
			return domain.Output{}, err
		}
		if tainted {
			stash.Store(&out)
			return domain.Output{}, domain.ErrUpstreamFailed
		}
		return out, nil
	})
	if err == nil {
		ev.hold(h)
		return h.Output(), false, nil
	}
	if ctx.Err() != nil {
		return domain.Output{}, false, ctx.Err()
	}
	if out := stash.Load(); out != nil {
		return *out, true, nil
	}
	if errors.Is(err, domain.ErrUpstreamFailed) {
		return compute(ctx)
	}
	return domain.Output{}, false, err
}

// eval evaluates n at most once per request.
func (ev *evaluation) eval(ctx context.Context, n *node) (domain.Output, bool, error) {
	n.once.Do(func() {
		if n.planErr != nil {
			ev.fail(n.id.component, n.planErr)
			n.out, n.tainted = ev.placeholder(n.id.kind, n.frames), true
			return
		}
		n.out, n.tainted, n.err = ev.cached(ctx, n.key, func(ctx context.Context) (domain.Output, bool, error) {
			return ev.compute(ctx, n)
		})
	})
	return n.out, n.tainted, n.err
}

func (ev *evaluation) placeholder(k domain.MediaKind, frames int) domain.Output {
	return ev.r.format.Placeholder(k, frames)
}

// compute evaluates the inputs of n concurrently, then runs its processor.
func (ev *evaluation) compute(ctx context.Context, n *node) (domain.Output, bool, error) {
	inputs := make([]domain.Output, len(n.inputs))
	taints := make([]bool, len(n.inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range n.inputs {
		if in == nil {
			inputs[i] = ev.placeholder(n.inputKinds[i], n.activeFrames)
			continue
		}
		g.Go(func() error {
			out, tainted, err := ev.eval(gctx, in)
			if err != nil {
				return err
			}
			inputs[i], taints[i] = out, tainted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Output{}, false, err
	}

	tainted := false
	for _, t := range taints {
		tainted = tainted || t
	}

	if err := ev.r.workers.Acquire(ctx, 1); err != nil {
		return domain.Output{}, false, err
	}
	out, err := ev.process(ctx, n, inputs)
	ev.r.workers.Release(1)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Output{}, false, ctxErr
		}
		ev.fail(n.id.component, err)
		return ev.placeholder(n.id.kind, n.frames), true, nil
	}
	if n.id.kind == domain.KindAudio {
		out.Audio = pad(out.Audio, n.lead, n.frames)
	}
	return out, tainted, nil
}

// pad places b lead frames into a silent block of frames sample frames.
func pad(b *domain.AudioBlock, lead, frames int) *domain.AudioBlock {
	if lead == 0 && b.Frames() == frames {
		return b
	}
	out := domain.NewAudioBlock(b.SampleRate, b.Channels, frames)
	if n := min(b.Frames(), frames-lead); n > 0 {
		copy(out.Samples[lead*b.Channels:], b.Samples[:n*b.Channels])
	}
	return out
}

// process calls the processor of n, turning errors, panics and outputs of the
// wrong kind into ErrProcessorFailed or ErrUnexpectedOutput.
func (ev *evaluation) process(ctx context.Context, n *node, inputs []domain.Output) (out domain.Output, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Output{}, err
	}

	ctx, span := ev.r.tracer.Start(ctx, "renderer.node",
		ports.WithAttribute("component", n.id.component.String()),
		ports.WithAttribute("processor", n.comp.Processor.String()),
		ports.WithAttribute("kind", n.id.kind.String()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	defer func() {
		if p := recover(); p != nil {
			err = zerr.With(zerr.Wrap(domain.ErrProcessorFailed, "processor panicked"), "component", n.id.component.String())
			err = zerr.With(err, "panic", fmt.Sprint(p))
		}
	}()

	out, err = n.proc.Process(ctx, ports.ProcessInput{
		Component: n.id.component,
		Kind:      n.id.kind,
		Inputs:    inputs,
		Params:    n.params,
		Local:     n.local,
		Span:      n.localSpan,
		Format:    ev.r.format,
		Frames:    n.activeFrames,
	})
	if err != nil {
		if ctx.Err() != nil {
			return domain.Output{}, err
		}
		failed := zerr.With(zerr.Wrap(domain.ErrProcessorFailed, "processor returned an error"), "component", n.id.component.String())
		return domain.Output{}, zerr.With(failed, "cause", err.Error())
	}
	if !out.Kinds().Has(n.id.kind) {
		bad := zerr.With(zerr.Wrap(domain.ErrUnexpectedOutput, "processor output lacks requested kind"), "component", n.id.component.String())
		return domain.Output{}, zerr.With(bad, "kind", n.id.kind.String())
	}
	if err := out.Validate(); err != nil {
		bad := zerr.With(zerr.Wrap(domain.ErrUnexpectedOutput, "processor output is malformed"), "component", n.id.component.String())
		return domain.Output{}, zerr.With(bad, "cause", err.Error())
	}
	return out, nil
}

// composite evaluates the top-level nodes and hands them to the compositor.
func (ev *evaluation) composite(ctx context.Context) (domain.Output, bool, error) {
	p := ev.plan
	if len(p.top) == 0 {
		return ev.placeholder(p.req.kind, p.req.frames), false, nil
	}

	outs := make([]domain.Output, len(p.top))
	taints := make([]bool, len(p.top))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range p.top {
		g.Go(func() error {
			out, tainted, err := ev.eval(gctx, n)
			if err != nil {
				return err
			}
			outs[i], taints[i] = out, tainted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Output{}, false, err
	}

	tainted := false
	for _, t := range taints {
		tainted = tainted || t
	}

	if err := ctx.Err(); err != nil {
		return domain.Output{}, false, err
	}
	out, err := ev.backend(ctx, outs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Output{}, false, ctxErr
		}
		failed := zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "compositing backend failed"), "cause", err.Error())
		ev.fail(0, zerr.With(failed, "kind", p.req.kind.String()))
		return ev.placeholder(p.req.kind, p.req.frames), true, nil
	}
	return out, tainted, nil
}

func (ev *evaluation) backend(ctx context.Context, outs []domain.Output) (domain.Output, error) {
	p := ev.plan
	f := ev.r.format

	if p.req.kind == domain.KindAudio {
		req := ports.MixRequest{Format: f, Frames: p.req.frames, Tracks: make([]ports.Track, len(p.top))}
		for i, n := range p.top {
			req.Tracks[i] = ports.Track{
				Component: n.id.component,
				Audio:     outs[i].Audio,
				Offset:    trackOffset(p, n, f),
				Gain:      n.comp.Placement.Gain,
			}
		}
		block, err := ev.r.compositor.Mix(ctx, req)
		return domain.Output{Audio: block}, err
	}

	req := ports.CompositeRequest{Format: f, Layers: make([]ports.Layer, len(p.top))}
	for i, n := range p.top {
		req.Layers[i] = ports.Layer{Component: n.id.component, Image: outs[i].Image, Placement: n.comp.Placement}
	}
	img, err := ev.r.compositor.Composite(ctx, req)
	return domain.Output{Image: img}, err
}
