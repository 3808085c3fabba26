package workspace_test

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/engine/solver"
	"go.trai.ch/delta/internal/engine/workspace"
)

func clip(start float64) domain.ComponentSpec {
	return domain.ComponentSpec{
		Processor: "solid",
		Start:     domain.Seconds(start),
		Duration:  domain.Seconds(5),
		Outputs:   []domain.PinSpec{{Name: "out", Kind: domain.KindImage}},
	}
}

func newWorkspace(depth int) *workspace.Workspace {
	return workspace.New(domain.NewProject("test"), solver.New(0), depth, 50*time.Millisecond)
}

func addClip(t *testing.T, w *workspace.Workspace, start float64) domain.ComponentID {
	t.Helper()
	var id domain.ComponentID
	_, err := w.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		var inv domain.Invalidation
		var err error
		id, inv, err = p.AddComponent(clip(start))
		return inv, err
	})
	require.NoError(t, err)
	return id
}

func TestWorkspace_EditPublishesView(t *testing.T) {
	w := newWorkspace(10)
	before := w.View()
	require.Empty(t, before.Snapshot.Components())

	id := addClip(t, w, 2)

	after := w.View()
	assert.Empty(t, before.Snapshot.Components(), "published views are immutable")
	assert.Equal(t, []domain.ComponentID{id}, after.Snapshot.Components())
	assert.Equal(t, after.Snapshot.Revision(), after.Timing.Revision())

	ct, ok := after.Timing.Component(id)
	require.True(t, ok)
	assert.Equal(t, domain.Span{Start: domain.Seconds(2), End: domain.Seconds(7)}, ct.Span)
}

func TestWorkspace_FailedEditRestores(t *testing.T) {
	w := newWorkspace(10)
	addClip(t, w, 0)
	before := w.View()

	boom := errors.New("boom")
	view, err := w.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		_, _, err := p.AddComponent(clip(10))
		require.NoError(t, err)
		return domain.Invalidation{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Same(t, before, view)
	assert.Same(t, before, w.View())

	var revision uint64
	_, err = w.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		revision = p.Revision()
		return domain.Invalidation{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, before.Snapshot.Revision(), revision, "the revision is rolled back too")
	assert.Same(t, before, w.View())

	// The next edit starts from the restored project.
	addClip(t, w, 20)
	assert.Len(t, w.View().Snapshot.Components(), 2)
}

func TestWorkspace_RejectedEditKeepsView(t *testing.T) {
	w := newWorkspace(10)
	id := addClip(t, w, 0)
	before := w.View()

	_, err := w.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		return p.SetDuration(id, 0)
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Same(t, before, w.View())
}

func TestWorkspace_UndoRedo(t *testing.T) {
	w := newWorkspace(10)
	assert.False(t, w.CanUndo())
	_, err := w.Undo()
	require.ErrorIs(t, err, domain.ErrNothingToUndo)

	first := addClip(t, w, 0)
	second := addClip(t, w, 10)

	view, err := w.Undo()
	require.NoError(t, err)
	assert.Equal(t, []domain.ComponentID{first}, view.Snapshot.Components())
	assert.True(t, w.CanRedo())

	view, err = w.Redo()
	require.NoError(t, err)
	assert.Equal(t, []domain.ComponentID{first, second}, view.Snapshot.Components())
	_, err = w.Redo()
	require.ErrorIs(t, err, domain.ErrNothingToRedo)

	_, err = w.Undo()
	require.NoError(t, err)
	third := addClip(t, w, 20)
	assert.False(t, w.CanRedo(), "a new edit drops undone edits")
	assert.Equal(t, []domain.ComponentID{first, third}, w.View().Snapshot.Components())
	assert.NotEqual(t, second, third, "ids are never reused")
}

func TestWorkspace_HistoryDepth(t *testing.T) {
	w := newWorkspace(2)
	for i := range 3 {
		addClip(t, w, float64(i*10))
	}

	for range 2 {
		_, err := w.Undo()
		require.NoError(t, err)
	}
	_, err := w.Undo()
	require.ErrorIs(t, err, domain.ErrNothingToUndo)
	assert.Len(t, w.View().Snapshot.Components(), 1)
}

func TestWorkspace_IncrementalResolve(t *testing.T) {
	w := newWorkspace(10)
	addClip(t, w, 0)
	second := addClip(t, w, 10)
	prev := w.View().Timing

	view, err := w.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		return p.SetDuration(second, domain.Seconds(2))
	})
	require.NoError(t, err)

	c, _ := view.Snapshot.Component(second)
	assert.Equal(t, []domain.MarkerID{c.Left}, view.Timing.Recomputed())
	assert.Equal(t, prev.Regions()[0], view.Timing.Regions()[0])

	ct, _ := view.Timing.Component(second)
	assert.Equal(t, domain.Span{Start: domain.Seconds(10), End: domain.Seconds(12)}, ct.Span)
}

func TestWorkspace_Subscribe(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		w := newWorkspace(10)

		var mu sync.Mutex
		var got []domain.Invalidation
		w.Subscribe(func(inv domain.Invalidation) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, inv)
		})

		first := addClip(t, w, 0)
		second := addClip(t, w, 10)

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, got, 1, "edits within the window are coalesced")
		assert.True(t, got[0].HasComponent(first))
		assert.True(t, got[0].HasComponent(second))
	})
}

func TestWorkspace_Flush(t *testing.T) {
	w := newWorkspace(10)
	var got []domain.Invalidation
	w.Subscribe(func(inv domain.Invalidation) { got = append(got, inv) })

	id := addClip(t, w, 0)
	w.Flush()

	require.Len(t, got, 1)
	assert.True(t, got[0].HasComponent(id))
}
