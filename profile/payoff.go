package profile

import (
	"fmt"

	"nash/game"

	"gonum.org/v1/gonum/mat"
)

// payoffMatrices returns the payoff tables of both players as m×k matrices.
func payoffMatrices(g game.Strategic) (a, b *mat.Dense) {
	m, k := g.NumStrategies(1), g.NumStrategies(2)
	a, b = mat.NewDense(m, k, nil), mat.NewDense(m, k, nil)
	profile := make([]int, 2)
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			profile[0], profile[1] = i, j
			u1, _ := g.Payoff(1, profile).Float64()
			u2, _ := g.Payoff(2, profile).Float64()
			a.Set(i, j, u1)
			b.Set(i, j, u2)
		}
	}
	return a, b
}

func vectors[T any](g game.Strategic, m Mixed[T]) (x, y *mat.VecDense, err error) {
	if g.NumPlayers() != 2 {
		return nil, nil, fmt.Errorf("%d players: %w", g.NumPlayers(), game.ErrInvalidPlayer)
	}
	s := m.Float64()
	if len(s[0]) != g.NumStrategies(1) || len(s[1]) != g.NumStrategies(2) {
		return nil, nil, fmt.Errorf("profile does not match the game: %w", ErrInvalidProfile)
	}
	return mat.NewVecDense(len(s[0]), s[0]), mat.NewVecDense(len(s[1]), s[1]), nil
}

// Payoffs returns the expected payoff of each player under m.
func Payoffs[T any](g game.Strategic, m Mixed[T]) ([2]float64, error) {
	x, y, err := vectors(g, m)
	if err != nil {
		return [2]float64{}, err
	}
	a, b := payoffMatrices(g)
	return [2]float64{mat.Inner(x, a, y), mat.Inner(x, b, y)}, nil
}

// Regret returns, per player, how much a best pure response gains over the
// profile. Both are zero (up to rounding) exactly at an equilibrium.
func Regret[T any](g game.Strategic, m Mixed[T]) ([2]float64, error) {
	x, y, err := vectors(g, m)
	if err != nil {
		return [2]float64{}, err
	}
	a, b := payoffMatrices(g)

	var ay, btx mat.VecDense
	ay.MulVec(a, y)
	btx.MulVec(b.T(), x)
	u := [2]float64{mat.Dot(x, &ay), mat.Dot(y, &btx)}
	return [2]float64{mat.Max(&ay) - u[0], mat.Max(&btx) - u[1]}, nil
}

// ExpectedPayoffs evaluates a behavior profile on its tree.
func ExpectedPayoffs[T any](g game.Extensive, b Behavior[T]) [2]float64 {
	probs := make(map[game.InfosetID][]float64)
	for _, locals := range b.locals {
		for _, l := range locals {
			probs[l.Infoset] = toFloat64(b.f, l.Probs)
		}
	}

	var walk func(n game.NodeID, reach float64) [2]float64
	walk = func(n game.NodeID, reach float64) [2]float64 {
		var u [2]float64
		if reach == 0 {
			return u
		}
		if g.IsTerminal(n) {
			for p := range u {
				v, _ := g.Payoff(n, p+1).Float64()
				u[p] = reach * v
			}
			return u
		}
		for a, child := range g.Children(n) {
			var q float64
			if g.Player(n) == game.Chance {
				q, _ = g.ChanceProb(n, a).Float64()
			} else {
				q = probs[g.Infoset(n)][a]
			}
			sub := walk(child, reach*q)
			u[0] += sub[0]
			u[1] += sub[1]
		}
		return u
	}
	return walk(g.Root(), 1)
}
