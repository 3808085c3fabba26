package workspace

import "go.trai.ch/delta/internal/core/domain"

// step is one history entry: the project state to return to and what the
// edit that left it touched.
type step struct {
	snapshot *domain.Snapshot
	inv      domain.Invalidation
}

// history is a bounded undo/redo stack of snapshots.
type history struct {
	depth int
	undos []step
	redos []step
}

func newHistory(depth int) *history {
	return &history{depth: max(depth, 0)}
}

// record pushes the state before an edit and forgets every undone edit.
func (h *history) record(before *domain.Snapshot, inv domain.Invalidation) {
	if h.depth == 0 {
		return
	}
	h.undos = append(h.undos, step{snapshot: before, inv: inv})
	if len(h.undos) > h.depth {
		h.undos = h.undos[len(h.undos)-h.depth:]
	}
	h.redos = nil
}

func (h *history) undo(current *domain.Snapshot) (step, bool) {
	s, ok := pop(&h.undos)
	if ok {
		h.redos = append(h.redos, step{snapshot: current, inv: s.inv})
	}
	return s, ok
}

func (h *history) redo(current *domain.Snapshot) (step, bool) {
	s, ok := pop(&h.redos)
	if ok {
		h.undos = append(h.undos, step{snapshot: current, inv: s.inv})
	}
	return s, ok
}

func (h *history) canUndo() bool { return len(h.undos) > 0 }

func (h *history) canRedo() bool { return len(h.redos) > 0 }

func pop(stack *[]step) (step, bool) {
	n := len(*stack)
	if n == 0 {
		return step{}, false
	}
	s := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return s, true
}
