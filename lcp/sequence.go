package lcp

import (
	"fmt"
	"math/big"

	"nash/field"
	"nash/game"
	"nash/linalg"
)

// seqInfoset is an information set as discovered by the walk: the sequence
// leading to it and the sequence index of its first action.
type seqInfoset struct {
	id      game.InfosetID
	parent  int
	first   int
	actions int
}

type seqLeaf struct {
	node game.NodeID
	seq  [2]int
	prob *big.Rat
}

// sequenceWalk collects the sequences, information sets and reachable leaves of
// a two-player tree. Sequence 0 of each player is the empty sequence.
type sequenceWalk struct {
	g        game.Extensive
	seqs     [2]int
	infosets [2][]seqInfoset
	index    map[game.InfosetID]int
	leaves   []seqLeaf
}

func (w *sequenceWalk) visit(n game.NodeID, seq [2]int, prob *big.Rat) error {
	if w.g.IsTerminal(n) {
		w.leaves = append(w.leaves, seqLeaf{node: n, seq: seq, prob: prob})
		return nil
	}
	children := w.g.Children(n)
	player := w.g.Player(n)
	if player == game.Chance {
		total := new(big.Rat)
		for a, child := range children {
			q := w.g.ChanceProb(n, a)
			if q.Sign() < 0 {
				return fmt.Errorf("node %d: negative chance probability: %w", n, ErrUndefined)
			}
			total.Add(total, q)
			if err := w.visit(child, seq, new(big.Rat).Mul(prob, q)); err != nil {
				return err
			}
		}
		if total.Cmp(big.NewRat(1, 1)) != 0 {
			return fmt.Errorf("node %d: chance probabilities sum to %s: %w", n, total.RatString(), ErrUndefined)
		}
		return nil
	}
	if player != 1 && player != 2 {
		return fmt.Errorf("node %d: player %d: %w", n, player, ErrUndefined)
	}

	p := player - 1
	h := w.g.Infoset(n)
	if w.g.NumActions(h) != len(children) {
		return fmt.Errorf("node %d: %d children for %d actions: %w", n, len(children), w.g.NumActions(h), ErrUndefined)
	}
	k, ok := w.index[h]
	if !ok {
		w.infosets[p] = append(w.infosets[p], seqInfoset{id: h, parent: seq[p], first: w.seqs[p], actions: len(children)})
		w.seqs[p] += len(children)
		k = len(w.infosets[p]) - 1
		w.index[h] = k
	}
	info := w.infosets[p][k]
	if info.parent != seq[p] {
		return fmt.Errorf("information set %d reached under different own sequences: %w", h, ErrUndefined)
	}
	for a, child := range children {
		next := seq
		next[p] = info.first + a
		if err := w.visit(child, next, prob); err != nil {
			return err
		}
	}
	return nil
}

// BuildSequence sets up the sequence-form system of a two-player tree with
// perfect recall. Variables are x (sequences of player 1) | y (sequences of
// player 2) | λ (one per root and information set of player 1) | μ (likewise
// for player 2):
//
//	w_x = A1·y − Eᵀ·λ ≥ 0
//	w_y = A2·x − Fᵀ·μ ≥ 0
//	w_λ = E·x − e ≥ 0
//	w_μ = F·y − f ≥ 0
//
// A1 and A2 accumulate, over the leaves, the chance probability times the
// shifted cost of the pair of sequences leading there.
func BuildSequence[T any](f field.Field[T], g game.Extensive) (*Problem[T], error) {
	if g.NumPlayers() != 2 {
		return nil, fmt.Errorf("extensive game with %d players: %w", g.NumPlayers(), ErrUndefined)
	}
	if !g.IsPerfectRecall() {
		return nil, fmt.Errorf("imperfect recall: %w", ErrUndefined)
	}
	w := &sequenceWalk{g: g, seqs: [2]int{1, 1}, index: make(map[game.InfosetID]int)}
	if err := w.visit(g.Root(), [2]int{}, big.NewRat(1, 1)); err != nil {
		return nil, err
	}

	var hi *big.Rat
	for _, leaf := range w.leaves {
		for p := 1; p <= 2; p++ {
			if u := g.Payoff(leaf.node, p); hi == nil || u.Cmp(hi) > 0 {
				hi = u
			}
		}
	}
	shift := f.Add(f.FromRat(hi), f.One())

	s1, s2 := w.seqs[0], w.seqs[1]
	h1, h2 := len(w.infosets[0]), len(w.infosets[1])
	x0, y0 := 0, s1
	l0 := s1 + s2
	u0 := l0 + 1 + h1
	n := u0 + 1 + h2

	a := linalg.NewMatrix(f, n, n)
	for _, leaf := range w.leaves {
		if leaf.prob.Sign() == 0 {
			continue
		}
		prob := f.FromRat(leaf.prob)
		c1 := f.Mul(prob, f.Sub(shift, f.FromRat(g.Payoff(leaf.node, 1))))
		c2 := f.Mul(prob, f.Sub(shift, f.FromRat(g.Payoff(leaf.node, 2))))
		a.Accumulate(x0+leaf.seq[0], y0+leaf.seq[1], c1)
		a.Accumulate(y0+leaf.seq[1], x0+leaf.seq[0], c2)
	}

	constrain := func(row, col int, c T) {
		a.Accumulate(row, col, c)
		a.Accumulate(col, row, f.Neg(c))
	}
	one, minus := f.One(), f.Neg(f.One())
	for p, offsets := range [2][2]int{{x0, l0}, {y0, u0}} {
		seq, dual := offsets[0], offsets[1]
		constrain(dual, seq, one)
		for r, info := range w.infosets[p] {
			constrain(dual+1+r, seq+info.parent, minus)
			for i := 0; i < info.actions; i++ {
				constrain(dual+1+r, seq+info.first+i, one)
			}
		}
	}

	b := linalg.NewVector(f, n)
	b[l0] = f.One()
	b[u0] = f.One()

	layout := Layout{
		Primal: [2]Block{{Offset: x0, Len: s1}, {Offset: y0, Len: s2}},
		Dual:   [2]Block{{Offset: l0, Len: 1 + h1}, {Offset: u0, Len: 1 + h2}},
	}
	for p, offset := range [2]int{x0, y0} {
		layout.Infosets[p] = w.layout(p, offset)
	}
	return New(f, a, b, layout)
}

// layout lists player p's information sets in the game's own order. Sets the
// walk never reached keep their action count but get no variables.
func (w *sequenceWalk) layout(p, offset int) []InfosetLayout {
	ids := w.g.Infosets(p + 1)
	out := make([]InfosetLayout, 0, len(ids))
	for _, h := range ids {
		k, ok := w.index[h]
		if !ok {
			out = append(out, InfosetLayout{Infoset: h, Parent: -1, NumActions: w.g.NumActions(h)})
			continue
		}
		info := w.infosets[p][k]
		out = append(out, InfosetLayout{
			Infoset:    h,
			Parent:     offset + info.parent,
			Actions:    span(offset+info.first, info.actions),
			NumActions: info.actions,
		})
	}
	return out
}
