// Package solver resolves marker links into global timing.
package solver

import (
	"cmp"
	"slices"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// Solver positions every marker of a snapshot on the global timeline.
//
// The marker-link graph is split into regions (connected components). Each
// region is solved by breadth-first propagation from its anchors: a link
// asserts To = From + Offset in both directions. A region without anchors is
// seeded with its smallest marker id, placed at its previous resolved
// position or, failing that, at its hint.
type Solver struct {
	tolerance domain.Time
}

// New creates a Solver. Two paths to the same marker that disagree by more
// than tolerance make the region unsatisfiable.
func New(tolerance domain.Time) *Solver {
	return &Solver{tolerance: max(tolerance, 0)}
}

// Resolve computes the timing of snap. Regions that hold no dirty marker and
// have the same membership as in prev are copied from prev unchanged.
// prev may be nil.
func (s *Solver) Resolve(snap *domain.Snapshot, prev *domain.Timing, dirty domain.Invalidation) *domain.Timing {
	b := domain.NewTimingBuilder(snap.Revision())
	positions := make(map[domain.MarkerID]domain.Time)
	failed := make(map[domain.MarkerID]error)

	for _, members := range partition(snap) {
		if r, pos, ok := s.reuse(prev, members, dirty); ok {
			b.AddRegion(r, pos, false)
			record(r, pos, positions, failed)
			continue
		}

		r, pos := s.solve(snap, prev, members)
		b.AddRegion(r, pos, true)
		record(r, pos, positions, failed)
	}

	for _, id := range snap.Components() {
		c, _ := snap.Component(id)
		b.SetComponent(id, componentTiming(snap, c, positions, failed))
	}
	return b.Build()
}

func record(r *domain.Region, pos map[domain.MarkerID]domain.Time, positions map[domain.MarkerID]domain.Time, failed map[domain.MarkerID]error) {
	for _, m := range r.Markers {
		if r.Err != nil {
			failed[m] = r.Err
			continue
		}
		positions[m] = pos[m]
	}
}

func (s *Solver) reuse(prev *domain.Timing, members []domain.MarkerID, dirty domain.Invalidation) (*domain.Region, map[domain.MarkerID]domain.Time, bool) {
	if prev == nil || dirty.All {
		return nil, nil, false
	}
	for _, m := range members {
		if dirty.HasMarker(m) {
			return nil, nil, false
		}
	}
	r, ok := prev.RegionOf(members[0])
	if !ok || r.Root != members[0] || !slices.Equal(r.Markers, members) {
		return nil, nil, false
	}
	if r.Err != nil {
		return r, nil, true
	}
	pos := make(map[domain.MarkerID]domain.Time, len(members))
	for _, m := range members {
		t, err := prev.Position(m)
		if err != nil {
			return nil, nil, false
		}
		pos[m] = t
	}
	return r, pos, true
}

func (s *Solver) solve(snap *domain.Snapshot, prev *domain.Timing, members []domain.MarkerID) (*domain.Region, map[domain.MarkerID]domain.Time) {
	r := &domain.Region{Root: members[0], Markers: members}
	pos := make(map[domain.MarkerID]domain.Time, len(members))

	var queue []domain.MarkerID
	for _, id := range members {
		if m, _ := snap.Marker(id); m.Anchored {
			pos[id] = m.Anchor
			queue = append(queue, id)
		}
	}
	if len(queue) == 0 {
		pos[r.Root] = seed(snap, prev, r.Root)
		queue = append(queue, r.Root)
	}

	visited := make(map[domain.LinkID]struct{})
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, lid := range snap.LinksOf(cur) {
			if _, done := visited[lid]; done {
				continue
			}
			visited[lid] = struct{}{}

			l, _ := snap.Link(lid)
			next := l.Other(cur)
			want := pos[cur] + l.Offset
			if cur == l.To {
				want = pos[cur] - l.Offset
			}

			have, placed := pos[next]
			if !placed {
				pos[next] = want
				queue = append(queue, next)
				continue
			}
			diff := (have - want).Abs()
			if diff > s.tolerance {
				r.Err = conflict(l, r.Root, have, want)
				return r, nil
			}
			r.Residual = max(r.Residual, diff)
		}
	}
	return r, pos
}

// seed places the implicit anchor of an under-determined region.
func seed(snap *domain.Snapshot, prev *domain.Timing, m domain.MarkerID) domain.Time {
	if prev != nil {
		if t, err := prev.Position(m); err == nil {
			return t
		}
	}
	marker, _ := snap.Marker(m)
	return marker.Hint
}

func conflict(l domain.MarkerLink, root domain.MarkerID, have, want domain.Time) error {
	err := zerr.With(zerr.Wrap(domain.ErrUnsatisfiable, "marker links disagree"), "link", l.ID.String())
	err = zerr.With(err, "region", root.String())
	err = zerr.With(err, "marker", l.From.String()+" -> "+l.To.String())
	return zerr.With(err, "delta", (have - want).String())
}

func componentTiming(
	snap *domain.Snapshot,
	c domain.Component,
	positions map[domain.MarkerID]domain.Time,
	failed map[domain.MarkerID]error,
) domain.ComponentTiming {
	for _, m := range []domain.MarkerID{c.Left, c.Right} {
		if err, ok := failed[m]; ok {
			return domain.ComponentTiming{Err: zerr.With(zerr.Wrap(err, "component boundary unresolved"), "component", c.ID.String())}
		}
	}

	span := domain.Span{Start: positions[c.Left], End: positions[c.Right]}
	if span.End <= span.Start {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidSpan, "component ends before it starts"), "component", c.ID.String())
		err = zerr.With(err, "start", span.Start.String())
		return domain.ComponentTiming{Span: span, Err: zerr.With(err, "end", span.End.String())}
	}

	points := make([]domain.TimePoint, 0, len(c.Markers))
	for _, id := range c.Markers {
		m, _ := snap.Marker(id)
		g, ok := positions[id]
		if !m.Locked || !ok {
			continue
		}
		points = append(points, domain.TimePoint{Global: g, Local: m.Local})
	}
	slices.SortStableFunc(points, func(a, b domain.TimePoint) int {
		return cmp.Compare(a.Local, b.Local)
	})
	for i := 1; i < len(points); i++ {
		if points[i].Local <= points[i-1].Local || points[i].Global <= points[i-1].Global {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidSpan, "locked markers out of order"), "component", c.ID.String())
			return domain.ComponentTiming{Span: span, Err: err}
		}
	}
	return domain.ComponentTiming{Span: span, Map: domain.TimeMap{Points: points}}
}
