package controller

import (
	"context"
	"fmt"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Export evaluates every frame of r against the current view and hands them
// to enc in index order, then finishes the encoder.
//
// Frames are evaluated out of order, at most MaxInFlight at a time and at most
// ReorderWindow ahead of the next frame to encode. ExportRate, when set, caps
// how many frames start per second.
func (c *Controller) Export(ctx context.Context, r domain.FrameRange, enc ports.Encoder) (err error) {
	if r.Len() == 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "export range is empty"), "range", fmt.Sprintf("[%d, %d)", r.From, r.To))
	}
	if r.From < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "frame index must not be negative"), "frame", r.From)
	}
	if err := enc.Accepts(c.renderer.Format()); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrEncodeFailed, "encoder rejected output format"), "cause", err.Error())
	}

	ctx, span := c.tracer.Start(ctx, "controller.export",
		ports.WithAttribute("from", r.From),
		ports.WithAttribute("to", r.To),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	view := c.views.View()
	window := max(c.cfg.ReorderWindow, 1)
	ahead := semaphore.NewWeighted(int64(window))
	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.cfg.ExportRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.cfg.ExportRate), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan *Result, window)

	g.Go(func() error {
		for i := r.From; i < r.To; i++ {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			if err := ahead.Acquire(gctx, 1); err != nil {
				return err
			}
			t, err := c.request(gctx, i, PriorityExport, view)
			if err != nil {
				return err
			}
			g.Go(func() error {
				res, err := t.Wait(gctx)
				if err != nil {
					return err
				}
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		return nil
	})

	g.Go(func() error {
		pending := make(map[int64]*Result, window)
		for next := r.From; next < r.To; {
			select {
			case res := <-results:
				pending[res.Index] = res
			case <-gctx.Done():
				return gctx.Err()
			}
			for res, ok := pending[next]; ok; res, ok = pending[next] {
				delete(pending, next)
				if err := c.write(gctx, enc, res); err != nil {
					return err
				}
				ahead.Release(1)
				next++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := enc.Finish(ctx); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrEncodeFailed, "encoder failed to finish"), "cause", err.Error())
	}
	c.logger.Info(fmt.Sprintf("exported %d frames", r.Len()))
	return nil
}

func (c *Controller) write(ctx context.Context, enc ports.Encoder, res *Result) error {
	if n := len(res.Frame.Failures) + len(res.Audio.Failures); n > 0 {
		c.logger.Warn(fmt.Sprintf("frame %d rendered with %d failed nodes", res.Index, n))
	}
	err := enc.WriteFrame(ctx, ports.Frame{
		Index: res.Index,
		At:    res.Frame.At,
		Image: res.Frame.Image,
		Audio: res.Audio.Audio,
	})
	if err != nil {
		failed := zerr.With(zerr.Wrap(domain.ErrEncodeFailed, "encoder rejected frame"), "frame", res.Index)
		return zerr.With(failed, "cause", err.Error())
	}
	return nil
}
