// Package workspace owns a project and publishes its resolved views.
package workspace

import (
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/engine/solver"
)

// EditFunc mutates the project and reports what it touched.
type EditFunc func(p *domain.Project) (domain.Invalidation, error)

// Listener receives coalesced invalidations after edits.
type Listener func(inv domain.Invalidation)

// Workspace serializes edits to a project. After every successful edit it
// resolves the timing incrementally and publishes an immutable view, so
// readers never observe a project mid-edit.
type Workspace struct {
	mu      sync.Mutex
	project *domain.Project
	solver  *solver.Solver
	history *history

	view atomic.Pointer[domain.View]

	listenersMu sync.RWMutex
	listeners   []Listener
	debouncer   *Debouncer
}

// New creates a Workspace around p. depth bounds the undo history; window is
// how long listeners' notifications are coalesced.
func New(p *domain.Project, s *solver.Solver, depth int, window time.Duration) *Workspace {
	w := &Workspace{
		project: p,
		solver:  s,
		history: newHistory(depth),
	}
	w.debouncer = NewDebouncer(window, w.notify)
	snap := p.Snapshot()
	w.view.Store(&domain.View{Snapshot: snap, Timing: s.Resolve(snap, nil, domain.Invalidation{All: true})})
	return w
}

// View returns the latest published view.
func (w *Workspace) View() *domain.View {
	return w.view.Load()
}

// Edit applies fn with exclusive access to the project. When fn fails the
// project, revision included, is rolled back to its state before the call and
// the published view does not change.
func (w *Workspace) Edit(fn EditFunc) (*domain.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := w.project.Snapshot()
	inv, err := fn(w.project)
	if err != nil {
		w.project.Rollback(before)
		return w.view.Load(), err
	}
	if inv.Empty() && w.project.Revision() == before.Revision() {
		return w.view.Load(), nil
	}

	w.history.record(before, inv)
	return w.publish(inv), nil
}

// Undo reverts the most recent edit.
func (w *Workspace) Undo() (*domain.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, ok := w.history.undo(w.project.Snapshot())
	if !ok {
		return w.view.Load(), domain.ErrNothingToUndo
	}
	return w.publish(w.project.Restore(step.snapshot)), nil
}

// Redo reapplies the most recently undone edit.
func (w *Workspace) Redo() (*domain.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, ok := w.history.redo(w.project.Snapshot())
	if !ok {
		return w.view.Load(), domain.ErrNothingToRedo
	}
	return w.publish(w.project.Restore(step.snapshot)), nil
}

// CanUndo reports whether Undo has an edit to revert.
func (w *Workspace) CanUndo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.canUndo()
}

// CanRedo reports whether Redo has an edit to reapply.
func (w *Workspace) CanRedo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.canRedo()
}

// Subscribe registers l for coalesced invalidations.
func (w *Workspace) Subscribe(l Listener) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Flush delivers pending invalidations to listeners immediately.
func (w *Workspace) Flush() {
	w.debouncer.Flush()
}

// publish resolves the current project and swaps in the new view. w.mu must
// be held.
func (w *Workspace) publish(inv domain.Invalidation) *domain.View {
	snap := w.project.Snapshot()
	prev := w.view.Load()
	v := &domain.View{Snapshot: snap, Timing: w.solver.Resolve(snap, prev.Timing, inv)}
	w.view.Store(v)
	w.debouncer.Add(inv)
	return v
}

func (w *Workspace) notify(inv domain.Invalidation) {
	w.listenersMu.RLock()
	defer w.listenersMu.RUnlock()
	for _, l := range w.listeners {
		l(inv)
	}
}
