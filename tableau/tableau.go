package tableau

import (
	"errors"
	"fmt"

	"nash/field"
	"nash/lcp"
	"nash/linalg"
)

var (
	ErrBadPivot     = errors.New("tableau: bad pivot")
	ErrBadExitIndex = errors.New("tableau: no row can leave the basis")
)

// Tableau is a revised-simplex view of an lcp.Problem: the explicit inverse of
// the current basis together with the basic values. The problem itself is
// shared and never modified; the covering vector is owned by the tableau so
// that branches can perturb it independently.
type Tableau[T any] struct {
	problem  *lcp.Problem[T]
	f        field.Field[T]
	covering linalg.Vector[T]
	inverse  *linalg.Matrix[T]
	values   linalg.Vector[T]
	basis    []int // row -> variable
	rows     []int // variable -> row, -1 when nonbasic
	pivots   int
}

// New returns the slack basis of p: every w_i basic on row i with value −b_i.
func New[T any](p *lcp.Problem[T]) *Tableau[T] {
	n := p.Size()
	t := &Tableau[T]{
		problem:  p,
		f:        p.Field,
		covering: p.Covering.Clone(),
		inverse:  linalg.Identity(p.Field, n),
		values:   p.RHS(),
		basis:    make([]int, n),
		rows:     make([]int, p.NumVariables()),
	}
	for v := range t.rows {
		t.rows[v] = -1
	}
	for i := 0; i < n; i++ {
		t.basis[i] = p.Slack(i)
		t.rows[p.Slack(i)] = i
	}
	return t
}

// Clone returns a deep copy sharing only the read-only problem.
func (t *Tableau[T]) Clone() *Tableau[T] {
	return &Tableau[T]{
		problem:  t.problem,
		f:        t.f,
		covering: t.covering.Clone(),
		inverse:  t.inverse.Clone(),
		values:   t.values.Clone(),
		basis:    append([]int(nil), t.basis...),
		rows:     append([]int(nil), t.rows...),
		pivots:   t.pivots,
	}
}

func (t *Tableau[T]) Problem() *lcp.Problem[T] { return t.problem }

func (t *Tableau[T]) Size() int { return len(t.basis) }

// Pivots is the number of pivots performed since New, clones included.
func (t *Tableau[T]) Pivots() int { return t.pivots }

func (t *Tableau[T]) Member(v int) bool {
	return v >= 0 && v < len(t.rows) && t.rows[v] >= 0
}

// Find returns the row where v is basic, or -1.
func (t *Tableau[T]) Find(v int) int {
	if v < 0 || v >= len(t.rows) {
		return -1
	}
	return t.rows[v]
}

// Label returns the variable basic on row.
func (t *Tableau[T]) Label(row int) int { return t.basis[row] }

// Value is the current value of v, zero when nonbasic.
func (t *Tableau[T]) Value(v int) T {
	if r := t.Find(v); r >= 0 {
		return t.values[r]
	}
	return t.f.Zero()
}

func (t *Tableau[T]) Covering() linalg.Vector[T] { return t.covering.Clone() }

// Column returns the column of v expressed in the current basis.
func (t *Tableau[T]) Column(v int) linalg.Vector[T] {
	return t.inverse.MulVec(t.problem.Column(v, t.covering))
}

// Pivot brings v into the basis on row, replacing the variable basic there.
func (t *Tableau[T]) Pivot(row, v int) error {
	if row < 0 || row >= len(t.basis) || v < 0 || v >= len(t.rows) {
		return fmt.Errorf("row %d, variable %d out of range: %w", row, v, ErrBadPivot)
	}
	if t.Member(v) {
		return fmt.Errorf("%s is already basic: %w", t.problem.VariableName(v), ErrBadPivot)
	}
	col := t.Column(v)
	p := col[row]
	if t.f.Sign(p) == 0 {
		return fmt.Errorf("zero pivot at row %d for %s: %w", row, t.problem.VariableName(v), ErrBadPivot)
	}

	k := t.f.Div(t.f.One(), p)
	t.inverse.ScaleRow(row, k)
	t.values[row] = t.f.Mul(t.values[row], k)
	for i, a := range col {
		if i == row || t.f.Sign(a) == 0 {
			continue
		}
		t.inverse.AddRowMultiple(i, row, t.f.Neg(a))
		t.values[i] = t.f.Sub(t.values[i], t.f.Mul(a, t.values[row]))
	}

	t.rows[t.basis[row]] = -1
	t.basis[row] = v
	t.rows[v] = row
	t.pivots++
	return nil
}

// ExitIndex chooses the row that leaves when v enters: the minimum ratio
// value_r / column_r over rows with a positive column entry, ties broken
// lexicographically on the rows of the basis inverse divided the same way.
func (t *Tableau[T]) ExitIndex(v int) (int, error) {
	col := t.Column(v)
	best := -1
	for r, a := range col {
		if t.f.Sign(a) <= 0 {
			continue
		}
		if best < 0 || t.lexLess(r, a, best, col[best]) {
			best = r
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("ray along %s: %w", t.problem.VariableName(v), ErrBadExitIndex)
	}
	return best, nil
}

// EntryRow is the row the artificial variable enters at on a fresh tableau,
// the lexicographic minimum of (value_r, inverse_r) / |column_r| over rows
// with a negative artificial column entry. Afterwards every basic value is
// non-negative.
func (t *Tableau[T]) EntryRow() (int, error) {
	col := t.Column(t.problem.Artificial())
	best := -1
	for r, a := range col {
		if t.f.Sign(a) >= 0 {
			continue
		}
		if best < 0 || t.lexLess(r, t.f.Neg(a), best, t.f.Neg(col[best])) {
			best = r
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("artificial column has no negative entry: %w", ErrBadExitIndex)
	}
	return best, nil
}

// lexLess compares (value_r, inverse_r) / d lexicographically.
func (t *Tableau[T]) lexLess(r1 int, d1 T, r2 int, d2 T) bool {
	if c := t.f.Compare(t.f.Div(t.values[r1], d1), t.f.Div(t.values[r2], d2)); c != 0 {
		return c < 0
	}
	for k := 0; k < t.inverse.Cols(); k++ {
		if c := t.f.Compare(t.f.Div(t.inverse.At(r1, k), d1), t.f.Div(t.inverse.At(r2, k), d2)); c != 0 {
			return c < 0
		}
	}
	return false
}

// Perturb sets one entry of the tableau's covering vector.
func (t *Tableau[T]) Perturb(row int, value T) {
	t.covering[row] = value
}

// ResetCovering restores the problem's covering vector.
func (t *Tableau[T]) ResetCovering() {
	t.covering = t.problem.Covering.Clone()
}

// Refactor recomputes the basis inverse from the original columns of the basic
// variables, and the basic values from it, discarding accumulated drift.
func (t *Tableau[T]) Refactor() error {
	n := len(t.basis)
	b := linalg.NewMatrix(t.f, n, n)
	for r, v := range t.basis {
		for i, c := range t.problem.Column(v, t.covering) {
			b.Set(i, r, c)
		}
	}
	inv, err := b.Inverse()
	if err != nil {
		return fmt.Errorf("failed to refactor basis: %w: %w", ErrBadPivot, err)
	}
	t.inverse = inv
	t.values = inv.MulVec(t.problem.RHS())
	return nil
}

// BasisVector returns the value of every variable, w then x then the artificial.
func (t *Tableau[T]) BasisVector() linalg.Vector[T] {
	out := linalg.NewVector(t.f, t.problem.NumVariables())
	for r, v := range t.basis {
		out[v] = t.values[r]
	}
	return out
}
