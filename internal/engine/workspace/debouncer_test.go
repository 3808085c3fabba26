package workspace_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/engine/workspace"
)

func TestDebouncer_Coalesces(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		var received domain.Invalidation

		d := workspace.NewDebouncer(100*time.Millisecond, func(inv domain.Invalidation) {
			calls++
			received = inv
		})

		d.Add(domain.Invalidation{Markers: []domain.MarkerID{3}})
		time.Sleep(50 * time.Millisecond)
		d.Add(domain.Invalidation{Markers: []domain.MarkerID{1}, Components: []domain.ComponentID{2}})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, calls)
		assert.Equal(t, []domain.MarkerID{1, 3}, received.Markers)
		assert.Equal(t, []domain.ComponentID{2}, received.Components)
	})
}

func TestDebouncer_IgnoresEmpty(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		d := workspace.NewDebouncer(100*time.Millisecond, func(domain.Invalidation) { calls++ })

		d.Add(domain.Invalidation{})
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		d.Flush()

		assert.Zero(t, calls)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		d := workspace.NewDebouncer(100*time.Millisecond, func(inv domain.Invalidation) {
			calls++
			assert.True(t, inv.All)
		})

		d.Add(domain.Invalidation{All: true})
		d.Flush()
		assert.Equal(t, 1, calls, "flush delivers synchronously")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, calls, "nothing is left for the timer")
	})
}
