package searcher

import "nash/tableau"

// accumulator keeps the distinct solutions found so far in discovery order.
// Solutions are compared with the field's tolerance so lookups are linear.
type accumulator[T any] struct {
	seen      []tableau.BFS[T]
	stopAfter int
}

func (a *accumulator[T]) contains(bfs tableau.BFS[T]) bool {
	for _, s := range a.seen {
		if s.Equal(bfs) {
			return true
		}
	}
	return false
}

// add records bfs and reports whether it was new.
func (a *accumulator[T]) add(bfs tableau.BFS[T]) bool {
	if a.contains(bfs) {
		return false
	}
	a.seen = append(a.seen, bfs)
	return true
}

func (a *accumulator[T]) count() int { return len(a.seen) }

func (a *accumulator[T]) full() bool {
	return a.stopAfter > 0 && len(a.seen) >= a.stopAfter
}
