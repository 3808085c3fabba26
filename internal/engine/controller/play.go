package controller

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/delta/internal/core/domain"
)

// Play requests preview frames at the frame rate starting at index from and
// calls deliver with every frame that is delivered. A frame that is still
// being evaluated when the next one is due is superseded, so playback drops
// frames instead of falling behind. Play returns when the timeline ends or
// ctx is done.
func (c *Controller) Play(ctx context.Context, from int64, deliver func(*Result)) error {
	end := c.FrameCount(c.views.View())
	if from >= end {
		return nil
	}

	frame := c.rate.FrameDuration()
	ticker := time.NewTicker(time.Duration(frame.Seconds() * float64(time.Second)))
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	started := time.Now()
	index := from
	for {
		t, err := c.RequestFrame(ctx, index, PriorityPreview)
		if err != nil {
			return err
		}
		wg.Go(func() {
			if res, err := t.Wait(ctx); err == nil {
				deliver(res)
			}
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			// Tick periods are truncated to nanoseconds.
			elapsed := domain.Seconds(now.Sub(started).Seconds())
			index = from + c.rate.FrameAt(elapsed+frame/2)
		}
		if index >= end {
			return nil
		}
	}
}
