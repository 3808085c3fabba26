// Package controller turns frame requests into scheduled evaluations.
package controller

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/renderer"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// ViewSource yields the most recent project view.
type ViewSource interface {
	View() *domain.View
}

// Controller schedules frame evaluations against a renderer. It bounds the
// number of evaluations in flight and keeps at most one preview request alive.
type Controller struct {
	renderer *renderer.Renderer
	views    ViewSource
	rate     domain.FrameRate
	cfg      domain.ControllerConfig
	tracer   ports.Tracer
	logger   ports.Logger

	slots *semaphore.Weighted

	mu      sync.Mutex
	preview *Ticket
}

// New creates a Controller evaluating frames at the given rate.
func New(
	r *renderer.Renderer,
	views ViewSource,
	rate domain.FrameRate,
	cfg domain.ControllerConfig,
	tracer ports.Tracer,
	logger ports.Logger,
) *Controller {
	return &Controller{
		renderer: r,
		views:    views,
		rate:     rate,
		cfg:      cfg,
		tracer:   tracer,
		logger:   logger,
		slots:    semaphore.NewWeighted(int64(max(cfg.MaxInFlight, 1))),
	}
}

// RequestFrame submits frame index for evaluation against the latest view.
//
// A preview request cancels the previous preview ticket with ErrSuperseded.
// When MaxInFlight evaluations are running, RequestFrame blocks until a slot
// frees. ctx bounds the evaluation and must outlive the ticket.
func (c *Controller) RequestFrame(ctx context.Context, index int64, priority Priority) (*Ticket, error) {
	return c.request(ctx, index, priority, nil)
}

func (c *Controller) request(ctx context.Context, index int64, priority Priority, view *domain.View) (*Ticket, error) {
	if index < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "frame index must not be negative"), "frame", index)
	}

	tctx, cancel := context.WithCancelCause(ctx)
	t := newTicket(index, c.rate.FrameTime(index), priority, cancel)
	t.setState(StateRequesting)

	if priority == PriorityPreview {
		c.mu.Lock()
		prev := c.preview
		c.preview = t
		c.mu.Unlock()
		if prev != nil {
			prev.cancel(domain.ErrSuperseded)
		}
	}

	if err := c.slots.Acquire(tctx, 1); err != nil {
		c.settle(tctx, t, nil, err)
		if ctx.Err() != nil {
			return t, ctx.Err()
		}
		return t, nil
	}

	go func() {
		defer c.slots.Release(1)
		t.setState(StateInFlight)
		if view == nil {
			view = c.views.View()
		}
		res, err := c.evaluate(tctx, view, t)
		c.settle(tctx, t, res, err)
	}()
	return t, nil
}

// settle moves t to its terminal state and releases its context.
func (c *Controller) settle(ctx context.Context, t *Ticket, res *Result, err error) {
	switch {
	case err == nil:
		t.finish(StateDelivered, res, nil)
	case ctx.Err() != nil:
		t.finish(StateCancelled, nil, context.Cause(ctx))
	default:
		t.finish(StateFailed, nil, err)
	}
	t.cancel(nil)

	c.mu.Lock()
	if c.preview == t {
		c.preview = nil
	}
	c.mu.Unlock()
}

func (c *Controller) evaluate(ctx context.Context, view *domain.View, t *Ticket) (res *Result, err error) {
	ctx, span := c.tracer.Start(ctx, "controller.frame",
		ports.WithAttribute("frame", t.Index),
		ports.WithAttribute("priority", t.Priority.String()),
	)
	defer func() {
		if err != nil && !errors.Is(err, context.Canceled) {
			span.RecordError(err)
		}
		span.End()
	}()

	frame, err := c.renderer.RenderFrame(ctx, view, t.At)
	if err != nil {
		return nil, err
	}
	audio, err := c.renderer.RenderAudio(ctx, view, domain.Span{Start: t.At, End: c.rate.FrameTime(t.Index + 1)})
	if err != nil {
		return nil, err
	}
	return &Result{Index: t.Index, Frame: frame, Audio: audio}, nil
}

// FrameCount returns the number of frames covering the timeline of view.
func (c *Controller) FrameCount(view *domain.View) int64 {
	end := view.Timing.End()
	if end <= 0 {
		return 0
	}
	n := c.rate.FrameAt(end)
	if c.rate.FrameTime(n) < end {
		n++
	}
	return n
}
