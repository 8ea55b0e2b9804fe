package engine

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"testing"

	"nash/communication"
	"nash/field"
	"nash/game"
	"nash/lcp"
	"nash/profile"
	"nash/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

/**
Tests the solve pipeline end to end
- strategic games with known equilibria, in discovery order, exact and floating
- supports of a game, callback order, limits, refusals
- extensive games given as yaml documents through the local engine
- random games: exact equilibria have no regret, floating agrees on supports
- random perfect recall trees: no player gains by a pure behavior deviation
- payoff evaluation failures keep the remaining equilibria
*/

type scenario struct {
	name string
	a, b [][]int64
	want []string
}

var scenarios = []scenario{
	{
		name: "matching pennies",
		a:    [][]int64{{1, -1}, {-1, 1}},
		b:    [][]int64{{-1, 1}, {1, -1}},
		want: []string{"[1/2 1/2] [1/2 1/2]"},
	},
	{
		name: "coordination",
		a:    [][]int64{{1, 0}, {0, 1}},
		b:    [][]int64{{1, 0}, {0, 1}},
		want: []string{"[0 1] [0 1]", "[1/2 1/2] [1/2 1/2]", "[1 0] [1 0]"},
	},
	{
		name: "battle of the sexes",
		a:    [][]int64{{2, 0}, {0, 1}},
		b:    [][]int64{{1, 0}, {0, 2}},
		want: []string{"[0 1] [0 1]", "[2/3 1/3] [1/3 2/3]", "[1 0] [1 0]"},
	},
	{
		name: "chicken",
		a:    [][]int64{{0, -1}, {1, -10}},
		b:    [][]int64{{0, 1}, {-1, -10}},
		want: []string{"[0 1] [1 0]", "[9/10 1/10] [9/10 1/10]", "[1 0] [0 1]"},
	},
	{
		name: "3x2",
		a:    [][]int64{{3, 3}, {2, 5}, {0, 6}},
		b:    [][]int64{{3, 2}, {2, 6}, {3, 1}},
		want: []string{"[0 1/3 2/3] [1/3 2/3]", "[4/5 1/5 0] [2/3 1/3]", "[1 0 0] [1 0]"},
	},
	{
		name: "rock paper scissors",
		a:    [][]int64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}},
		b:    [][]int64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}},
		want: []string{"[1/3 1/3 1/3] [1/3 1/3 1/3]"},
	},
	{
		name: "prisoner's dilemma",
		a:    [][]int64{{3, 0}, {5, 1}},
		b:    [][]int64{{3, 5}, {0, 1}},
		want: []string{"[0 1] [0 1]"},
	},
	{
		name: "dominant strategy",
		a:    [][]int64{{2, 2}, {1, 1}},
		b:    [][]int64{{1, 0}, {1, 0}},
		want: []string{"[1 0] [1 0]"},
	},
	{
		name: "constant game",
		a:    [][]int64{{1, 1}, {1, 1}},
		b:    [][]int64{{1, 1}, {1, 1}},
		want: []string{"[0 1] [0 1]"},
	},
	{
		name: "single strategy each",
		a:    [][]int64{{4}},
		b:    [][]int64{{-4}},
		want: []string{"[1] [1]"},
	},
	{
		name: "3x3 coordination",
		a:    [][]int64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		b:    [][]int64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		want: []string{
			"[0 0 1] [0 0 1]",
			"[1/2 0 1/2] [1/2 0 1/2]",
			"[1/3 1/3 1/3] [1/3 1/3 1/3]",
			"[0 1/2 1/2] [0 1/2 1/2]",
			"[0 1 0] [0 1 0]",
			"[1/2 1/2 0] [1/2 1/2 0]",
			"[1 0 0] [1 0 0]",
		},
	},
}

func formats[T any](found []profile.Mixed[T]) []string {
	var out []string
	for _, m := range found {
		out = append(out, m.Format())
	}
	return out
}

func TestSolveStrategic(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			g := game.Bimatrix(sc.a, sc.b)
			s := NewSolver[*big.Rat](field.NewRational())
			found, err := s.SolveStrategic(context.Background(), g, nil)
			require.NoError(t, err)
			require.Equal(t, sc.want, formats(found))
			require.Equal(t, len(sc.want), s.Metrics().Equilibria)

			for _, m := range found {
				require.NoError(t, m.Validate())
				regret, err := profile.Regret(g, m)
				require.NoError(t, err)
				require.InDelta(t, 0.0, regret[0], 1e-9, "Player 1 should have no profitable deviation")
				require.InDelta(t, 0.0, regret[1], 1e-9, "Player 2 should have no profitable deviation")
			}
		})
	}
}

func TestFloatingAgreesWithExact(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			g := game.Bimatrix(sc.a, sc.b)
			exact, err := NewSolver[*big.Rat](field.NewRational()).SolveStrategic(context.Background(), g, nil)
			require.NoError(t, err)
			approx, err := NewSolver[float64](field.NewFloat(1e-9)).SolveStrategic(context.Background(), g, nil)
			require.NoError(t, err)

			require.Len(t, approx, len(exact))
			for i := range exact {
				require.Equal(t, exact[i].Support(), approx[i].Support())
				want := exact[i].Float64()
				for p := range want {
					require.InDeltaSlice(t, want[p], approx[i].Float64()[p], 1e-9)
				}
			}
		})
	}
}

func TestSolverOptions(t *testing.T) {
	g := game.Bimatrix(scenarios[1].a, scenarios[1].b)

	t.Run("callback sees equilibria in order before the result", func(t *testing.T) {
		var seen []string
		found, err := NewSolver[*big.Rat](field.NewRational()).SolveStrategic(context.Background(), g, func(m profile.Mixed[*big.Rat]) {
			seen = append(seen, m.Format())
		})
		require.NoError(t, err)
		require.Equal(t, formats(found), seen)
	})

	t.Run("stop after one", func(t *testing.T) {
		found, err := NewSolver[*big.Rat](field.NewRational(), searcher.WithStopAfter(1)).SolveStrategic(context.Background(), g, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"[0 1] [0 1]"}, formats(found))
	})

	t.Run("max depth", func(t *testing.T) {
		found, err := NewSolver[*big.Rat](field.NewRational(), searcher.WithMaxDepth(1)).SolveStrategic(context.Background(), g, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"[0 1] [0 1]", "[1/2 1/2] [1/2 1/2]"}, formats(found))
	})

	t.Run("support of a game", func(t *testing.T) {
		rps := game.Bimatrix(scenarios[5].a, scenarios[5].b)
		sub, err := game.NewSupport(rps, []int{0, 1}, []int{0, 1})
		require.NoError(t, err)
		found, err := NewSolver[*big.Rat](field.NewRational()).SolveStrategic(context.Background(), sub, nil)
		require.NoError(t, err)
		require.NotEmpty(t, found)
		for _, m := range found {
			regret, err := profile.Regret(sub, m)
			require.NoError(t, err)
			require.InDelta(t, 0.0, regret[0], 1e-9)
			require.InDelta(t, 0.0, regret[1], 1e-9)
		}
	})

	t.Run("three players are refused", func(t *testing.T) {
		_, err := NewSolver[*big.Rat](field.NewRational()).SolveStrategic(context.Background(), game.NewTable(2, 2, 2), nil)
		require.ErrorIs(t, err, lcp.ErrUndefined)
	})

	t.Run("cancelled before starting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := NewSolver[*big.Rat](field.NewRational())
		found, err := s.SolveStrategic(ctx, g, nil)
		require.NoError(t, err)
		require.Empty(t, found)
		require.True(t, s.Metrics().Interrupted)
	})
}

func randomBimatrix(r *rand.Rand, m, k int) *game.Table {
	a, b := make([][]int64, m), make([][]int64, m)
	for i := range a {
		a[i], b[i] = make([]int64, k), make([]int64, k)
		for j := range a[i] {
			a[i][j] = int64(r.Intn(2001)) - 1000
			b[i][j] = int64(r.Intn(2001)) - 1000
		}
	}
	return game.Bimatrix(a, b)
}

func TestRandomGames(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		g := randomBimatrix(r, 2+r.Intn(3), 2+r.Intn(3))

		exact, err := NewSolver[*big.Rat](field.NewRational()).SolveStrategic(context.Background(), g, nil)
		require.NoError(t, err)
		require.NotEmpty(t, exact, "Every game should have an equilibrium")
		for j, m := range exact {
			regret, err := profile.Regret(g, m)
			require.NoError(t, err)
			require.InDelta(t, 0.0, regret[0], 1e-6)
			require.InDelta(t, 0.0, regret[1], 1e-6)
			for _, other := range exact[:j] {
				require.NotEqual(t, other.Format(), m.Format(), "Equilibria should not repeat")
			}
		}

		approx, err := NewSolver[float64](field.NewFloat(1e-9), searcher.WithStopAfter(1)).SolveStrategic(context.Background(), g, nil)
		require.NoError(t, err)
		require.Len(t, approx, 1)
		require.Equal(t, exact[0].Support(), approx[0].Support(), "The first path should agree across fields")
	}
}

// treeBuilder grows random two-player trees with perfect recall: a player's
// information set is keyed by everything that player has observed, and a
// player always observes their own moves.
type treeBuilder struct {
	r        *rand.Rand
	t        *game.Tree
	infosets map[string]game.InfosetID
}

func (tb *treeBuilder) payoff() *big.Rat {
	return big.NewRat(int64(tb.r.Intn(11))-5, 1)
}

func (tb *treeBuilder) grow(t *testing.T, n game.NodeID, depth int, seen [2]string) {
	if depth == 0 || (depth < 3 && tb.r.Intn(4) == 0) {
		require.NoError(t, tb.t.SetPayoffs(n, tb.payoff(), tb.payoff()))
		return
	}
	if tb.r.Intn(4) == 0 {
		children, err := tb.t.Chance(n, big.NewRat(1, 3), big.NewRat(2, 3))
		require.NoError(t, err)
		observer := tb.r.Intn(3) // 0 nobody, else the observing player
		for a, child := range children {
			next := seen
			if observer > 0 {
				next[observer-1] += fmt.Sprintf("|c%d", a)
			}
			tb.grow(t, child, depth-1, next)
		}
		return
	}

	player := tb.r.Intn(2) + 1
	key := fmt.Sprintf("%d%s", player, seen[player-1])
	h, ok := tb.infosets[key]
	if !ok {
		var err error
		h, err = tb.t.NewInfoset(player, 2+tb.r.Intn(2))
		require.NoError(t, err)
		tb.infosets[key] = h
	}
	children, err := tb.t.Decide(n, h)
	require.NoError(t, err)
	public := tb.r.Intn(2) == 0
	for a, child := range children {
		next := seen
		next[player-1] += fmt.Sprintf("|%s:%d", key, a)
		if public {
			next[2-player] += fmt.Sprintf("|o%d", a)
		}
		tb.grow(t, child, depth-1, next)
	}
}

func randomTree(t *testing.T, r *rand.Rand) *game.Tree {
	tb := &treeBuilder{r: r, t: game.NewTree(2), infosets: make(map[string]game.InfosetID)}
	tb.grow(t, tb.t.Root(), 4, [2]string{})
	return tb.t
}

// treeValue is the expected payoff of both players when each information set
// plays probs(player, infoset).
func treeValue(g game.Extensive, n game.NodeID, probs func(player int, h game.InfosetID) []float64) [2]float64 {
	if g.IsTerminal(n) {
		u1, _ := g.Payoff(n, 1).Float64()
		u2, _ := g.Payoff(n, 2).Float64()
		return [2]float64{u1, u2}
	}
	var value [2]float64
	for a, child := range g.Children(n) {
		var p float64
		if g.Player(n) == game.Chance {
			p, _ = g.ChanceProb(n, a).Float64()
		} else {
			p = probs(g.Player(n), g.Infoset(n))[a]
		}
		if p == 0 {
			continue
		}
		v := treeValue(g, child, probs)
		value[0] += p * v[0]
		value[1] += p * v[1]
	}
	return value
}

// bestPureValue is the best payoff player can reach with a pure behavior
// strategy against the opponent's part of b.
func bestPureValue(g game.Extensive, player int, equilibrium func(player int, h game.InfosetID) []float64) float64 {
	infosets := g.Infosets(player)
	index := make(map[game.InfosetID]int, len(infosets))
	for i, h := range infosets {
		index[h] = i
	}
	choice := make([]int, len(infosets))
	best := math.Inf(-1)
	for {
		v := treeValue(g, g.Root(), func(p int, h game.InfosetID) []float64 {
			if p != player {
				return equilibrium(p, h)
			}
			pure := make([]float64, g.NumActions(h))
			pure[choice[index[h]]] = 1
			return pure
		})
		best = math.Max(best, v[player-1])

		i := len(choice) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] < g.NumActions(infosets[i]) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return best
		}
	}
}

func pureStrategies(g game.Extensive, player int) int {
	count := 1
	for _, h := range g.Infosets(player) {
		count *= g.NumActions(h)
	}
	return count
}

func TestRandomTrees(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	f := field.NewRational()
	solved := 0
	for attempt := 0; attempt < 200 && solved < 20; attempt++ {
		g := randomTree(t, r)
		require.True(t, g.IsPerfectRecall())
		if len(g.Infosets(1)) == 0 || len(g.Infosets(2)) == 0 {
			continue
		}
		if pureStrategies(g, 1) > 512 || pureStrategies(g, 2) > 512 {
			continue
		}
		solved++

		found, err := NewSolver[*big.Rat](f, searcher.WithStopAfter(4)).SolveExtensive(context.Background(), g, nil)
		require.NoError(t, err)
		require.NotEmpty(t, found, "Every game should have an equilibrium")
		for _, b := range found {
			require.NoError(t, b.Validate())
			equilibrium := func(player int, h game.InfosetID) []float64 {
				probs := b.Infoset(player, h)
				out := make([]float64, len(probs))
				for i, p := range probs {
					out[i] = f.Float64(p)
				}
				return out
			}
			value := treeValue(g, g.Root(), equilibrium)
			for player := 1; player <= 2; player++ {
				best := bestPureValue(g, player, equilibrium)
				require.LessOrEqual(t, best-value[player-1], 1e-9, "Player %d should have no profitable deviation in %s", player, b.Format())
			}
		}
	}
	require.Equal(t, 20, solved)
}

const poker = `
title: one card poker
tree:
  players: 2
  infosets:
    - {name: K, player: 1, actions: 2}
    - {name: J, player: 1, actions: 2}
    - {name: q, player: 2, actions: 2}
  root:
    chance: ["1/2", "1/2"]
    children:
      - infoset: K
        children:
          - infoset: q
            children:
              - payoffs: [2, -2]
              - payoffs: [1, -1]
          - payoffs: [1, -1]
      - infoset: J
        children:
          - infoset: q
            children:
              - payoffs: [-2, 2]
              - payoffs: [1, -1]
          - payoffs: [-1, 1]
`

const coordinationTree = `
tree:
  players: 2
  infosets:
    - {name: h, player: 1, actions: 2}
    - {name: g, player: 2, actions: 2}
  root:
    infoset: h
    children:
      - infoset: g
        children:
          - payoffs: [1, 1]
          - payoffs: [0, 0]
      - infoset: g
        children:
          - payoffs: [0, 0]
          - payoffs: [1, 1]
`

const entry = `
tree:
  players: 2
  infosets:
    - {name: enter, player: 1, actions: 2}
    - {name: respond, player: 2, actions: 2}
  root:
    infoset: enter
    children:
      - payoffs: [0, 2]
      - infoset: respond
        children:
          - payoffs: [-1, -1]
          - payoffs: [1, 1]
`

func solveDocument(t *testing.T, text string, exact bool) *communication.SolveResponse {
	doc, err := game.ParseYAML([]byte(text))
	require.NoError(t, err)
	resp, err := NewLocal().Solve(context.Background(), communication.SolveRequest{Game: doc, Exact: exact})
	require.NoError(t, err)
	return resp
}

func TestSolveExtensive(t *testing.T) {
	t.Run("poker", func(t *testing.T) {
		resp := solveDocument(t, poker, true)
		require.NotEmpty(t, resp.Equilibria)
		require.Equal(t, []communication.Distribution{
			{Player: 1, Infoset: 0, Probs: []string{"1", "0"}},
			{Player: 1, Infoset: 1, Probs: []string{"1/3", "2/3"}},
			{Player: 2, Infoset: 2, Probs: []string{"2/3", "1/3"}},
		}, resp.Equilibria[0].Distributions)
		require.InDelta(t, 1.0/3, resp.Equilibria[0].Payoffs[0], 1e-12)
		require.InDelta(t, -1.0/3, resp.Equilibria[0].Payoffs[1], 1e-12)
	})

	t.Run("poker in floating point", func(t *testing.T) {
		resp := solveDocument(t, poker, false)
		require.NotEmpty(t, resp.Equilibria)
		require.Equal(t, []string{"1", "0"}, resp.Equilibria[0].Distributions[0].Probs)
		require.InDelta(t, 1.0/3, resp.Equilibria[0].Payoffs[0], 1e-9)
	})

	t.Run("coordination tree matches the strategic form", func(t *testing.T) {
		resp := solveDocument(t, coordinationTree, true)
		var got []string
		for _, eq := range resp.Equilibria {
			got = append(got, eq.Distributions[0].Probs[0]+" "+eq.Distributions[1].Probs[0])
		}
		require.Equal(t, []string{"0 0", "1/2 1/2", "1 1"}, got)
		require.Equal(t, 3, resp.Metrics.Equilibria)
	})

	t.Run("entry deterrence", func(t *testing.T) {
		resp := solveDocument(t, entry, true)
		require.NotEmpty(t, resp.Equilibria)
		require.Equal(t, []string{"0", "1"}, resp.Equilibria[0].Distributions[0].Probs)
		require.Equal(t, []string{"0", "1"}, resp.Equilibria[0].Distributions[1].Probs)
	})

	t.Run("solver returns behavior profiles", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte(coordinationTree))
		require.NoError(t, err)
		tree, err := doc.ExtensiveGame()
		require.NoError(t, err)
		found, err := NewSolver[*big.Rat](field.NewRational(), searcher.WithStopAfter(2)).SolveExtensive(context.Background(), tree, nil)
		require.NoError(t, err)
		require.Len(t, found, 2)
		require.Equal(t, "0:[1/2 1/2] | 1:[1/2 1/2]", found[1].Format())
	})
}

func TestLocal(t *testing.T) {
	t.Run("strategic document", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("strategic:\n  - [[1, 0], [0, 1]]\n  - [[1, 0], [0, 1]]\n"))
		require.NoError(t, err)
		resp, err := NewLocal().Solve(context.Background(), communication.SolveRequest{Game: doc, StopAfter: 2})
		require.NoError(t, err)
		require.Len(t, resp.Equilibria, 2)
		require.Equal(t, communication.Distribution{Player: 2, Infoset: -1, Probs: []string{"0", "1"}}, resp.Equilibria[0].Distributions[1])
		for _, prob := range resp.Equilibria[1].Distributions[0].Probs {
			v, err := strconv.ParseFloat(prob, 64)
			require.NoError(t, err)
			require.InDelta(t, 0.5, v, 1e-9)
		}
		require.InDeltaSlice(t, []float64{0.5, 0.5}, resp.Equilibria[1].Payoffs, 1e-9)
		require.Empty(t, resp.Error)
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := NewLocal().Solve(context.Background(), communication.SolveRequest{})
		require.ErrorIs(t, err, communication.ErrInvalidRequest)
	})

	t.Run("tolerance must stay below the perturbation", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("strategic:\n  - [[1, 0], [0, 1]]\n  - [[1, 0], [0, 1]]\n"))
		require.NoError(t, err)
		for _, tolerance := range []float64{2, 1e-5, 1e-6} {
			resp, err := NewLocal().Solve(context.Background(), communication.SolveRequest{Game: doc, Tolerance: tolerance})
			require.ErrorIs(t, err, communication.ErrInvalidRequest, "tolerance %g", tolerance)
			require.Nil(t, resp)
		}
		resp, err := NewLocal().Solve(context.Background(), communication.SolveRequest{Game: doc, Tolerance: 1e-7})
		require.NoError(t, err)
		require.Len(t, resp.Equilibria, 3)
	})

	t.Run("unevaluated equilibria are kept", func(t *testing.T) {
		f := field.NewRational()
		one, zero := f.One(), f.Zero()
		g := game.Bimatrix([][]int64{{1, 0}, {0, 1}}, [][]int64{{1, 0}, {0, 1}})
		found := []profile.Mixed[*big.Rat]{
			profile.NewMixed[*big.Rat](f, []*big.Rat{one, zero}, []*big.Rat{one, zero}),
			profile.NewMixed[*big.Rat](f, []*big.Rat{one, zero, zero}, []*big.Rat{one, zero}),
			profile.NewMixed[*big.Rat](f, []*big.Rat{zero, one}, []*big.Rat{zero, one}),
		}
		equilibria, err := mixedEquilibria[*big.Rat](f, g, found)
		require.ErrorIs(t, err, profile.ErrInvalidProfile)
		require.Len(t, equilibria, 3)
		require.Equal(t, []float64{1, 1}, equilibria[0].Payoffs)
		require.Nil(t, equilibria[1].Payoffs)
		require.Equal(t, []string{"1", "0", "0"}, equilibria[1].Distributions[0].Probs)
		require.Equal(t, []float64{1, 1}, equilibria[2].Payoffs)
	})

	t.Run("three player tree", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("tree:\n  players: 3\n  root: {payoffs: [1, 2, 3]}\n"))
		require.NoError(t, err)
		resp, err := NewLocal().Solve(context.Background(), communication.SolveRequest{Game: doc, Exact: true})
		require.ErrorIs(t, err, lcp.ErrUndefined)
		require.NotEmpty(t, resp.Error)
		require.Empty(t, resp.Equilibria)
	})
}
