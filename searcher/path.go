package searcher

import (
	"fmt"

	"nash/tableau"
)

type State int

const (
	// Initial: a fresh tableau, the artificial variable not yet basic.
	Initial State = iota
	// Pivoting: entering the complement of the variable that just left.
	Pivoting
	// Terminated: the artificial variable left, the basis is complementary.
	Terminated
	// DeadEnd: the path hit a ray or a degenerate pivot.
	DeadEnd
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Pivoting:
		return "pivoting"
	case Terminated:
		return "terminated"
	case DeadEnd:
		return "dead end"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Path follows one complementary path on a tableau it owns.
type Path[T any] struct {
	t        *tableau.Tableau[T]
	state    State
	entering int
	pivots   int
}

// NewPath starts at the slack basis of a fresh tableau.
func NewPath[T any](t *tableau.Tableau[T]) *Path[T] {
	return &Path[T]{t: t, state: Initial, entering: -1}
}

// ResumePath starts from a complementary basis by entering the artificial
// variable, which follows the ray of the tableau's current covering vector.
func ResumePath[T any](t *tableau.Tableau[T]) *Path[T] {
	return &Path[T]{t: t, state: Pivoting, entering: t.Problem().Artificial()}
}

func (p *Path[T]) State() State { return p.state }

func (p *Path[T]) Pivots() int { return p.pivots }

func (p *Path[T]) Tableau() *tableau.Tableau[T] { return p.t }

// Step performs one pivot. Errors of the tableau move the path to DeadEnd.
func (p *Path[T]) Step() error {
	problem := p.t.Problem()
	var row int
	var err error
	switch p.state {
	case Initial:
		p.entering = problem.Artificial()
		row, err = p.t.EntryRow()
	case Pivoting:
		row, err = p.t.ExitIndex(p.entering)
	default:
		return fmt.Errorf("step on a path in state %s", p.state)
	}
	if err != nil {
		p.state = DeadEnd
		return err
	}

	leaving := p.t.Label(row)
	if err := p.t.Pivot(row, p.entering); err != nil {
		p.state = DeadEnd
		return err
	}
	p.pivots++
	if leaving == problem.Artificial() {
		p.state = Terminated
		return nil
	}
	p.entering = problem.Complement(leaving)
	p.state = Pivoting
	return nil
}

// Run steps until the path terminates, dead-ends or exceeds maxPivots.
func (p *Path[T]) Run(maxPivots int) error {
	for p.state == Initial || p.state == Pivoting {
		if maxPivots > 0 && p.pivots >= maxPivots {
			return fmt.Errorf("%d pivots: %w", p.pivots, ErrPivotLimit)
		}
		if err := p.Step(); err != nil {
			return err
		}
	}
	if p.state == DeadEnd {
		return tableau.ErrBadExitIndex
	}
	return nil
}
