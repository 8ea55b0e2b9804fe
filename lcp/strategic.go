package lcp

import (
	"fmt"

	"nash/field"
	"nash/game"
	"nash/linalg"
)

// BuildStrategic sets up the Lemke-Howson system of a bimatrix game with m
// and k strategies. Variables are x (m) | y (k) | λ | μ:
//
//	w_x = A1·y − λ·1 ≥ 0    A1[i][j] = shift − u1(i,j)
//	w_y = A2·x − μ·1 ≥ 0    A2[j][i] = shift − u2(i,j)
//	w_λ = 1·x − 1 ≥ 0
//	w_μ = 1·y − 1 ≥ 0
//
// where shift is one more than the largest payoff, so every cost is positive.
func BuildStrategic[T any](f field.Field[T], g game.Strategic) (*Problem[T], error) {
	if g.NumPlayers() != 2 {
		return nil, fmt.Errorf("strategic game with %d players: %w", g.NumPlayers(), ErrUndefined)
	}
	m, k := g.NumStrategies(1), g.NumStrategies(2)
	if m == 0 || k == 0 {
		return nil, fmt.Errorf("player without strategies: %w", ErrUndefined)
	}

	_, hi := game.PayoffRange(g)
	shift := f.Add(f.FromRat(hi), f.One())

	n := m + k + 2
	lambda, mu := m+k, m+k+1
	a := linalg.NewMatrix(f, n, n)
	profile := make([]int, 2)
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			profile[0], profile[1] = i, j
			a.Set(i, m+j, f.Sub(shift, f.FromRat(g.Payoff(1, profile))))
			a.Set(m+j, i, f.Sub(shift, f.FromRat(g.Payoff(2, profile))))
		}
	}
	for i := 0; i < m; i++ {
		a.Set(i, lambda, f.Neg(f.One()))
		a.Set(lambda, i, f.One())
	}
	for j := 0; j < k; j++ {
		a.Set(m+j, mu, f.Neg(f.One()))
		a.Set(mu, m+j, f.One())
	}

	b := linalg.NewVector(f, n)
	b[lambda] = f.One()
	b[mu] = f.One()

	layout := Layout{
		Primal: [2]Block{{Offset: 0, Len: m}, {Offset: m, Len: k}},
		Dual:   [2]Block{{Offset: lambda, Len: 1}, {Offset: mu, Len: 1}},
		Infosets: [2][]InfosetLayout{
			{{Infoset: -1, Parent: -1, Actions: span(0, m), NumActions: m}},
			{{Infoset: -1, Parent: -1, Actions: span(m, k), NumActions: k}},
		},
	}
	return New(f, a, b, layout)
}

func span(offset, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = offset + i
	}
	return s
}
