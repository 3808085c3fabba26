package solver

import (
	"maps"
	"slices"

	"go.trai.ch/delta/internal/core/domain"
)

// unionFind groups markers joined by links. The root of every set is its
// smallest member.
type unionFind struct {
	parent map[domain.MarkerID]domain.MarkerID
}

func newUnionFind(ids []domain.MarkerID) *unionFind {
	uf := &unionFind{parent: make(map[domain.MarkerID]domain.MarkerID, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(m domain.MarkerID) domain.MarkerID {
	root := m
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[m] != root {
		next := uf.parent[m]
		uf.parent[m] = root
		m = next
	}
	return root
}

func (uf *unionFind) union(a, b domain.MarkerID) {
	ra, rb := uf.find(a), uf.find(b)
	switch {
	case ra == rb:
	case ra < rb:
		uf.parent[rb] = ra
	default:
		uf.parent[ra] = rb
	}
}

// partition returns the regions of snap, each sorted by marker id, ordered by
// their smallest marker.
func partition(snap *domain.Snapshot) [][]domain.MarkerID {
	ids := snap.Markers()
	uf := newUnionFind(ids)
	for _, lid := range snap.Links() {
		l, _ := snap.Link(lid)
		uf.union(l.From, l.To)
	}

	groups := make(map[domain.MarkerID][]domain.MarkerID)
	for _, id := range ids {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	out := make([][]domain.MarkerID, 0, len(groups))
	for _, root := range slices.Sorted(maps.Keys(groups)) {
		out = append(out, groups[root])
	}
	return out
}
