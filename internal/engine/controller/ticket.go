package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/engine/renderer"
)

// Priority orders frame requests.
type Priority int

const (
	// PriorityPreview requests are for interactive display. A newer preview
	// request supersedes any older one that has not been delivered.
	PriorityPreview Priority = iota
	// PriorityExport requests are never dropped.
	PriorityExport
)

func (p Priority) String() string {
	if p == PriorityExport {
		return "export"
	}
	return "preview"
}

// State is the lifecycle state of a ticket.
type State string

const (
	// StateIdle indicates the ticket has not been submitted.
	StateIdle State = "Idle"
	// StateRequesting indicates the ticket waits for an evaluation slot.
	StateRequesting State = "Requesting"
	// StateInFlight indicates the frame is being evaluated.
	StateInFlight State = "InFlight"
	// StateDelivered indicates the result is available.
	StateDelivered State = "Delivered"
	// StateCancelled indicates the request was superseded or its context ended.
	StateCancelled State = "Cancelled"
	// StateFailed indicates evaluation failed.
	StateFailed State = "Failed"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDelivered || s == StateCancelled || s == StateFailed
}

// Result is a delivered frame with the audio that plays during it.
type Result struct {
	Index int64
	Frame *renderer.Frame
	Audio *renderer.AudioChunk
}

// Ticket tracks one frame request.
type Ticket struct {
	ID       uuid.UUID
	Index    int64
	At       domain.Time
	Priority Priority

	cancel context.CancelCauseFunc
	done   chan struct{}

	mu     sync.Mutex
	state  State
	result *Result
	err    error
}

func newTicket(index int64, at domain.Time, priority Priority, cancel context.CancelCauseFunc) *Ticket {
	return &Ticket{
		ID:       uuid.New(),
		Index:    index,
		At:       at,
		Priority: priority,
		cancel:   cancel,
		done:     make(chan struct{}),
		state:    StateIdle,
	}
}

// State returns the current state.
func (t *Ticket) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the ticket reaches a terminal state.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the ticket is terminal and returns its outcome. A
// cancelled ticket returns its cancellation cause, e.g. ErrSuperseded.
func (t *Ticket) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Cancel abandons the request.
func (t *Ticket) Cancel() {
	t.cancel(context.Canceled)
}

func (t *Ticket) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Terminal() {
		t.state = s
	}
}

func (t *Ticket) finish(s State, res *Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	t.state, t.result, t.err = s, res, err
	close(t.done)
}
