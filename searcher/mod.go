package searcher

import (
	"errors"

	"nash/tableau"
)

var (
	// ErrPivotLimit means a single path exceeded its pivot budget, which only
	// happens when rounding makes the pivoting cycle.
	ErrPivotLimit = errors.New("searcher: pivot limit reached")

	errLimitReached = errors.New("equilibrium limit reached")
	errInterrupted  = errors.New("interrupted by caller")
)

// Visit receives each new complementary basis. A non-nil error stops the
// search and is returned to the caller.
type Visit[T any] func(bfs tableau.BFS[T]) error

// isDeadEnd reports whether err only ends the current branch.
func isDeadEnd(err error) bool {
	return errors.Is(err, tableau.ErrBadPivot) || errors.Is(err, tableau.ErrBadExitIndex)
}
