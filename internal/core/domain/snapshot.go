package domain

import (
	"maps"
	"slices"
	"sync"
)

// Snapshot is an immutable view of a project at one revision.
// It is safe for concurrent use.
type Snapshot struct {
	id       string
	revision uint64
	nextID   uint64

	components  map[ComponentID]Component
	markers     map[MarkerID]Marker
	links       map[LinkID]MarkerLink
	connections map[ConnectionID]Connection
	inputs      map[PinRef]ConnectionID

	indexOnce sync.Once
	index     *snapshotIndex
}

type snapshotIndex struct {
	componentIDs []ComponentID
	markerIDs    []MarkerID
	linkIDs      []LinkID
	markerLinks  map[MarkerID][]LinkID
	consumers    map[ComponentID][]Connection
	order        []ComponentID
	orderErr     error
}

// ProjectID returns the id of the project the snapshot was taken from.
func (s *Snapshot) ProjectID() string { return s.id }

// Revision returns the project revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 { return s.revision }

func (s *Snapshot) idx() *snapshotIndex {
	s.indexOnce.Do(func() {
		ix := &snapshotIndex{
			componentIDs: slices.Sorted(maps.Keys(s.components)),
			markerIDs:    slices.Sorted(maps.Keys(s.markers)),
			linkIDs:      slices.Sorted(maps.Keys(s.links)),
			markerLinks:  make(map[MarkerID][]LinkID),
			consumers:    make(map[ComponentID][]Connection),
		}
		for _, lid := range ix.linkIDs {
			l := s.links[lid]
			ix.markerLinks[l.From] = append(ix.markerLinks[l.From], lid)
			ix.markerLinks[l.To] = append(ix.markerLinks[l.To], lid)
		}
		for _, cid := range slices.Sorted(maps.Keys(s.connections)) {
			conn := s.connections[cid]
			ix.consumers[conn.From.Component] = append(ix.consumers[conn.From.Component], conn)
		}
		ix.order, ix.orderErr = topologicalOrder(ix.componentIDs, s.Upstream)
		s.index = ix
	})
	return s.index
}

// Component returns the component with the given id.
func (s *Snapshot) Component(id ComponentID) (Component, bool) {
	c, ok := s.components[id]
	return c, ok
}

// Marker returns the marker with the given id.
func (s *Snapshot) Marker(id MarkerID) (Marker, bool) {
	m, ok := s.markers[id]
	return m, ok
}

// Link returns the link with the given id.
func (s *Snapshot) Link(id LinkID) (MarkerLink, bool) {
	l, ok := s.links[id]
	return l, ok
}

// Connection returns the connection with the given id.
func (s *Snapshot) Connection(id ConnectionID) (Connection, bool) {
	c, ok := s.connections[id]
	return c, ok
}

// Components returns all component ids in insertion order.
func (s *Snapshot) Components() []ComponentID {
	return s.idx().componentIDs
}

// Markers returns all marker ids in insertion order.
func (s *Snapshot) Markers() []MarkerID {
	return s.idx().markerIDs
}

// Links returns all link ids in insertion order.
func (s *Snapshot) Links() []LinkID {
	return s.idx().linkIDs
}

// LinksOf returns the links touching m in insertion order.
func (s *Snapshot) LinksOf(m MarkerID) []LinkID {
	return s.idx().markerLinks[m]
}

// Connections returns all connections ordered by id.
func (s *Snapshot) Connections() []Connection {
	out := make([]Connection, 0, len(s.connections))
	for _, id := range slices.Sorted(maps.Keys(s.connections)) {
		out = append(out, s.connections[id])
	}
	return out
}

// InputFor returns the connection feeding pin, if any.
func (s *Snapshot) InputFor(pin PinRef) (Connection, bool) {
	id, ok := s.inputs[pin]
	if !ok {
		return Connection{}, false
	}
	return s.connections[id], true
}

// Upstream returns the components feeding c, ordered by c's input pins.
func (s *Snapshot) Upstream(c ComponentID) []ComponentID {
	comp, ok := s.components[c]
	if !ok {
		return nil
	}
	var out []ComponentID
	for _, pin := range comp.Inputs {
		if conn, ok := s.InputFor(PinRef{Component: c, Pin: NewInternedString(pin.Name)}); ok {
			out = append(out, conn.From.Component)
		}
	}
	return out
}

// Consumers returns the connections leaving c.
func (s *Snapshot) Consumers(c ComponentID) []Connection {
	return s.idx().consumers[c]
}

// TopologicalOrder lists components so that each follows its upstream inputs.
// Ties are broken by insertion order.
func (s *Snapshot) TopologicalOrder() ([]ComponentID, error) {
	ix := s.idx()
	return ix.order, ix.orderErr
}

// Region returns every marker reachable from m through links, sorted by id.
func (s *Snapshot) Region(m MarkerID) []MarkerID {
	if _, ok := s.markers[m]; !ok {
		return nil
	}
	seen := map[MarkerID]struct{}{m: {}}
	queue := []MarkerID{m}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, lid := range s.LinksOf(cur) {
			next := s.links[lid].Other(cur)
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
