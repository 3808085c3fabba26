package domain

import "slices"

// Invalidation names the graph regions touched by an edit.
// Markers feed the solver, Components feed evaluation consumers.
type Invalidation struct {
	Markers    []MarkerID
	Components []ComponentID
	// All is set when the whole project changed, e.g. after a restore.
	All bool
}

// Empty reports whether nothing was touched.
func (inv Invalidation) Empty() bool {
	return !inv.All && len(inv.Markers) == 0 && len(inv.Components) == 0
}

// HasMarker reports whether m is dirty.
func (inv Invalidation) HasMarker(m MarkerID) bool {
	if inv.All {
		return true
	}
	_, ok := slices.BinarySearch(inv.Markers, m)
	return ok
}

// HasComponent reports whether c is dirty.
func (inv Invalidation) HasComponent(c ComponentID) bool {
	if inv.All {
		return true
	}
	_, ok := slices.BinarySearch(inv.Components, c)
	return ok
}

// Merge returns the union of inv and o.
func (inv Invalidation) Merge(o Invalidation) Invalidation {
	if inv.All || o.All {
		return Invalidation{All: true}
	}
	return Invalidation{
		Markers:    union(inv.Markers, o.Markers),
		Components: union(inv.Components, o.Components),
	}
}

func union[T ~uint64](a, b []T) []T {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

// touched accumulates an Invalidation during an edit.
type touched struct {
	markers    map[MarkerID]struct{}
	components map[ComponentID]struct{}
}

func newTouched() *touched {
	return &touched{
		markers:    make(map[MarkerID]struct{}),
		components: make(map[ComponentID]struct{}),
	}
}

func (t *touched) marker(ids ...MarkerID) *touched {
	for _, id := range ids {
		t.markers[id] = struct{}{}
	}
	return t
}

func (t *touched) component(ids ...ComponentID) *touched {
	for _, id := range ids {
		t.components[id] = struct{}{}
	}
	return t
}

func (t *touched) build() Invalidation {
	inv := Invalidation{
		Markers:    make([]MarkerID, 0, len(t.markers)),
		Components: make([]ComponentID, 0, len(t.components)),
	}
	for id := range t.markers {
		inv.Markers = append(inv.Markers, id)
	}
	for id := range t.components {
		inv.Components = append(inv.Components, id)
	}
	slices.Sort(inv.Markers)
	slices.Sort(inv.Components)
	return inv
}
