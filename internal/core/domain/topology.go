package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// topologicalOrder orders ids so that every component comes after the
// components it depends on. ids must be sorted; the result is deterministic.
func topologicalOrder(ids []ComponentID, deps func(ComponentID) []ComponentID) ([]ComponentID, error) {
	order := make([]ComponentID, 0, len(ids))
	visited := make(map[ComponentID]int, len(ids)) // 0: unvisited, 1: visiting, 2: visited
	var path []ComponentID

	var visit func(u ComponentID) error
	visit = func(u ComponentID) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range deps(u) {
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	for _, id := range ids {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []ComponentID, dep ComponentID) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	var b strings.Builder
	for _, node := range path[startIdx:] {
		b.WriteString(node.String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "connection would close a cycle"), "cycle", b.String())
}
