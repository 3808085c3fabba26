package compositor

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// QueueSize is the number of jobs that may wait for the execution goroutine.
const QueueSize = 64

type job struct {
	ctx  context.Context
	run  func()
	ran  bool
	err  error
	done chan struct{}
}

// Queue runs submitted work on one dedicated goroutine, in submission order.
// Backends whose device context is bound to a single thread submit every
// call through a Queue.
type Queue struct {
	jobs chan *job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue starts the execution goroutine.
func NewQueue() *Queue {
	q := &Queue{jobs: make(chan *job, QueueSize)}
	q.wg.Go(q.runLoop)
	return q
}

func (q *Queue) runLoop() {
	for j := range q.jobs {
		if j.ctx.Err() == nil {
			j.err = execute(j.run)
			j.ran = true
		}
		close(j.done)
	}
}

// execute runs fn, turning a panic into ErrCompositeFailed so one bad job
// cannot stop the execution goroutine.
func execute(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = zerr.With(zerr.Wrap(domain.ErrCompositeFailed, "backend job panicked"), "panic", fmt.Sprint(p))
		}
	}()
	fn()
	return nil
}

// Do runs fn on the execution goroutine and waits for it to finish. A job
// whose ctx is done before it starts is skipped. A panic in fn is returned
// as ErrCompositeFailed.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	j := &job{ctx: ctx, run: fn, done: make(chan struct{})}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return domain.ErrQueueClosed
	}
	select {
	case q.jobs <- j:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}

	// Once queued the job always runs or is skipped, so waiting on done is
	// bounded by the jobs ahead of it.
	<-j.done
	if !j.ran {
		return ctx.Err()
	}
	return j.err
}

// Close stops accepting work, drains the queued jobs and stops the execution
// goroutine. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
