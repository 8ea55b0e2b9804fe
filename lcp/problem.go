package lcp

import (
	"errors"
	"fmt"

	"nash/field"
	"nash/game"
	"nash/linalg"
)

var (
	// ErrUndefined is returned for games the method does not apply to: a
	// player count other than two, imperfect recall or a malformed tree.
	ErrUndefined = errors.New("lcp: method undefined for this game")
	ErrShape     = errors.New("lcp: inconsistent problem dimensions")
)

// Block is a contiguous range of variables.
type Block struct {
	Offset int
	Len    int
}

func (b Block) Contains(i int) bool {
	return i >= b.Offset && i < b.Offset+b.Len
}

// InfosetLayout ties a player's information set to its action variables. In
// strategic form each player has a single entry covering all strategies.
type InfosetLayout struct {
	Infoset    game.InfosetID // -1 in strategic form
	Parent     int            // primal index of the parent sequence, -1 if none
	Actions    []int          // primal index of each action's sequence
	NumActions int
}

// Layout records where each player's variables live.
type Layout struct {
	Primal   [2]Block // strategies or sequences
	Dual     [2]Block // unit-sum or information-set constraints
	Infosets [2][]InfosetLayout
}

// Problem is the complementarity system w = A·x − b, x ≥ 0, w ≥ 0, x·w = 0,
// augmented with an artificial variable whose column is the covering vector.
//
// Variables are numbered 0..n-1 for w, n..2n-1 for x and 2n for the
// artificial variable.
type Problem[T any] struct {
	Field     field.Field[T]
	A         *linalg.Matrix[T]
	B         linalg.Vector[T]
	Covering  linalg.Vector[T]
	Bootstrap int
	Layout    Layout
}

// New wraps A and b with an all-ones covering vector.
func New[T any](f field.Field[T], a *linalg.Matrix[T], b linalg.Vector[T], layout Layout) (*Problem[T], error) {
	n := len(b)
	if n == 0 || a.Rows() != n || a.Cols() != n {
		return nil, fmt.Errorf("matrix %dx%d with vector of length %d: %w", a.Rows(), a.Cols(), n, ErrShape)
	}
	p := &Problem[T]{
		Field:    f,
		A:        a,
		B:        b,
		Covering: linalg.Fill(n, f.One()),
		Layout:   layout,
	}
	p.Bootstrap = bootstrapRow(f, p.B, p.Covering)
	return p, nil
}

// bootstrapRow is the row the artificial variable first enters at: the largest
// b_r/d_r, and among equal ratios the highest row.
func bootstrapRow[T any](f field.Field[T], b, d linalg.Vector[T]) int {
	best := -1
	var ratio T
	for r := range b {
		q := f.Div(b[r], d[r])
		if best < 0 || f.Compare(q, ratio) >= 0 {
			best, ratio = r, q
		}
	}
	return best
}

func (p *Problem[T]) Size() int { return len(p.B) }

func (p *Problem[T]) NumVariables() int { return 2*p.Size() + 1 }

func (p *Problem[T]) Slack(i int) int { return i }

func (p *Problem[T]) Primal(i int) int { return p.Size() + i }

func (p *Problem[T]) Artificial() int { return 2 * p.Size() }

func (p *Problem[T]) IsSlack(v int) bool { return v >= 0 && v < p.Size() }

func (p *Problem[T]) IsPrimal(v int) bool { return v >= p.Size() && v < 2*p.Size() }

// Complement pairs w_i with x_i. The artificial variable has no complement.
func (p *Problem[T]) Complement(v int) int {
	n := p.Size()
	switch {
	case v >= 0 && v < n:
		return v + n
	case v >= n && v < 2*n:
		return v - n
	default:
		return -1
	}
}

// Column returns the column of variable v in w − A·x − d·z0 = −b for the
// covering vector d.
func (p *Problem[T]) Column(v int, covering linalg.Vector[T]) linalg.Vector[T] {
	f := p.Field
	n := p.Size()
	switch {
	case p.IsSlack(v):
		c := linalg.NewVector(f, n)
		c[v] = f.One()
		return c
	case p.IsPrimal(v):
		return linalg.Negate(f, p.A.Column(v-n))
	case v == p.Artificial():
		return linalg.Negate(f, covering)
	default:
		panic(fmt.Sprintf("lcp: variable %d out of range", v))
	}
}

// RHS is −b.
func (p *Problem[T]) RHS() linalg.Vector[T] {
	return linalg.Negate(p.Field, p.B)
}

// VariableName renders v as w3, x3 or z0 for logs.
func (p *Problem[T]) VariableName(v int) string {
	switch {
	case p.IsSlack(v):
		return fmt.Sprintf("w%d", v)
	case p.IsPrimal(v):
		return fmt.Sprintf("x%d", v-p.Size())
	case v == p.Artificial():
		return "z0"
	default:
		return fmt.Sprintf("?%d", v)
	}
}
