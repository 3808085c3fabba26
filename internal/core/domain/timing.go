package domain

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"go.trai.ch/zerr"
)

// Region is one connected component of the marker-link graph.
type Region struct {
	// Root is the smallest marker id in the region and identifies it.
	Root    MarkerID
	Markers []MarkerID
	// Residual is the largest disagreement accepted within tolerance.
	Residual Time
	Err      error
}

// TimePoint pairs a global time with the local time it maps to.
type TimePoint struct {
	Global Time
	Local  Time
}

// TimeMap is a piecewise linear, strictly increasing mapping between a
// component's local timeline and the global timeline.
type TimeMap struct {
	Points []TimePoint
}

// ToLocal maps a global time to local time. Outside the points the first or
// last segment is extended.
func (m TimeMap) ToLocal(g Time) Time {
	a, b := m.segment(g, func(p TimePoint) Time { return p.Global })
	return interpolate(g, a.Global, b.Global, a.Local, b.Local)
}

// ToGlobal maps a local time to global time.
func (m TimeMap) ToGlobal(l Time) Time {
	a, b := m.segment(l, func(p TimePoint) Time { return p.Local })
	return interpolate(l, a.Local, b.Local, a.Global, b.Global)
}

func (m TimeMap) segment(t Time, key func(TimePoint) Time) (TimePoint, TimePoint) {
	pts := m.Points
	if len(pts) < 2 {
		return TimePoint{}, TimePoint{Global: 1, Local: 1}
	}
	i, _ := slices.BinarySearchFunc(pts, t, func(p TimePoint, t Time) int {
		return cmp.Compare(key(p), t)
	})
	i = min(max(i, 1), len(pts)-1)
	return pts[i-1], pts[i]
}

func interpolate(t, x0, x1, y0, y1 Time) Time {
	if x1 == x0 {
		return y0
	}
	if x1-x0 == y1-y0 {
		return y0 + (t - x0)
	}
	return y0 + Time(math.Round(float64(t-x0)*float64(y1-y0)/float64(x1-x0)))
}

// Stretched reports whether local and global time advance at different rates.
func (m TimeMap) Stretched() bool {
	for i := 1; i < len(m.Points); i++ {
		a, b := m.Points[i-1], m.Points[i]
		if b.Global-a.Global != b.Local-a.Local {
			return true
		}
	}
	return false
}

// ComponentTiming is the resolved placement of one component.
type ComponentTiming struct {
	Span Span
	Map  TimeMap
	Err  error
}

// Valid reports whether the component resolved to a usable span.
func (ct ComponentTiming) Valid() bool {
	return ct.Err == nil
}

// Timing is an immutable resolution of a snapshot's marker links.
type Timing struct {
	revision   uint64
	positions  map[MarkerID]Time
	regionOf   map[MarkerID]MarkerID
	regions    map[MarkerID]*Region
	components map[ComponentID]ComponentTiming
	recomputed []MarkerID
}

// TimingBuilder assembles a Timing. It is used by the solver.
type TimingBuilder struct {
	t *Timing
}

// NewTimingBuilder starts a Timing for a snapshot revision.
func NewTimingBuilder(revision uint64) *TimingBuilder {
	return &TimingBuilder{t: &Timing{
		revision:   revision,
		positions:  make(map[MarkerID]Time),
		regionOf:   make(map[MarkerID]MarkerID),
		regions:    make(map[MarkerID]*Region),
		components: make(map[ComponentID]ComponentTiming),
	}}
}

// AddRegion records a region and, on success, its marker positions.
func (b *TimingBuilder) AddRegion(r *Region, positions map[MarkerID]Time, recomputed bool) {
	b.t.regions[r.Root] = r
	for _, m := range r.Markers {
		b.t.regionOf[m] = r.Root
		if r.Err == nil {
			b.t.positions[m] = positions[m]
		}
	}
	if recomputed {
		b.t.recomputed = append(b.t.recomputed, r.Root)
	}
}

// SetComponent records the resolved placement of a component.
func (b *TimingBuilder) SetComponent(id ComponentID, ct ComponentTiming) {
	b.t.components[id] = ct
}

// Build returns the finished Timing. The builder must not be used afterwards.
func (b *TimingBuilder) Build() *Timing {
	slices.Sort(b.t.recomputed)
	t := b.t
	b.t = nil
	return t
}

// Revision returns the snapshot revision the timing was resolved from.
func (t *Timing) Revision() uint64 { return t.revision }

// Position returns the global time of marker m.
func (t *Timing) Position(m MarkerID) (Time, error) {
	root, ok := t.regionOf[m]
	if !ok {
		return 0, danglingMarker(m)
	}
	if err := t.regions[root].Err; err != nil {
		return 0, zerr.With(zerr.Wrap(ErrUnresolved, err.Error()), "marker", m.String())
	}
	return t.positions[m], nil
}

// RegionOf returns the region containing m.
func (t *Timing) RegionOf(m MarkerID) (*Region, bool) {
	root, ok := t.regionOf[m]
	if !ok {
		return nil, false
	}
	return t.regions[root], true
}

// Regions returns all regions ordered by root.
func (t *Timing) Regions() []*Region {
	roots := make([]MarkerID, 0, len(t.regions))
	for r := range t.regions {
		roots = append(roots, r)
	}
	slices.Sort(roots)
	out := make([]*Region, len(roots))
	for i, r := range roots {
		out[i] = t.regions[r]
	}
	return out
}

// Component returns the resolved placement of component id.
func (t *Timing) Component(id ComponentID) (ComponentTiming, bool) {
	ct, ok := t.components[id]
	return ct, ok
}

// Recomputed returns the roots of the regions solved afresh, as opposed to
// reused from the previous timing.
func (t *Timing) Recomputed() []MarkerID {
	return t.recomputed
}

// Err joins every region and component error.
func (t *Timing) Err() error {
	var errs []error
	for _, r := range t.Regions() {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	ids := make([]ComponentID, 0, len(t.components))
	for id, ct := range t.components {
		if ct.Err != nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		errs = append(errs, t.components[id].Err)
	}
	return errors.Join(errs...)
}

// End returns the latest valid component end, the length of the timeline.
func (t *Timing) End() Time {
	var end Time
	for _, ct := range t.components {
		if ct.Valid() && ct.Span.End > end {
			end = ct.Span.End
		}
	}
	return end
}
