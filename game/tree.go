package game

import (
	"fmt"
	"math/big"
)

type node struct {
	parent   NodeID
	action   int // index of this node among its parent's children
	player   int
	infoset  InfosetID
	children []NodeID
	probs    []*big.Rat
	payoffs  []*big.Rat
}

type infoset struct {
	player  int
	actions int
}

// Tree is an in-memory extensive game. Nodes and information sets are kept in
// arenas and addressed by index; a node without children is terminal and pays
// zero to every player unless payoffs were set.
type Tree struct {
	players  int
	nodes    []node
	infosets []infoset
}

var _ Extensive = (*Tree)(nil)

// NewTree returns a tree consisting of a single terminal root.
func NewTree(players int) *Tree {
	if players < 1 {
		panic("game: a tree needs at least one player")
	}
	t := &Tree{players: players}
	t.nodes = append(t.nodes, node{parent: -1, action: -1, infoset: -1})
	return t
}

// NewInfoset registers an information set for player with the given number of actions.
func (t *Tree) NewInfoset(player, actions int) (InfosetID, error) {
	if player < 1 || player > t.players {
		return -1, fmt.Errorf("player %d: %w", player, ErrInvalidPlayer)
	}
	if actions < 1 {
		return -1, fmt.Errorf("information set needs at least one action: %w", ErrInvalidInfoset)
	}
	t.infosets = append(t.infosets, infoset{player: player, actions: actions})
	return InfosetID(len(t.infosets) - 1), nil
}

// Decide turns the terminal node n into a decision node of information set h
// and returns one child per action.
func (t *Tree) Decide(n NodeID, h InfosetID) ([]NodeID, error) {
	if err := t.expandable(n); err != nil {
		return nil, err
	}
	if h < 0 || int(h) >= len(t.infosets) {
		return nil, fmt.Errorf("information set %d: %w", h, ErrInvalidInfoset)
	}
	t.nodes[n].player = t.infosets[h].player
	t.nodes[n].infoset = h
	return t.grow(n, t.infosets[h].actions), nil
}

// Chance turns the terminal node n into a chance node with one child per
// probability. Probabilities must be non-negative and sum to one.
func (t *Tree) Chance(n NodeID, probs ...*big.Rat) ([]NodeID, error) {
	if err := t.expandable(n); err != nil {
		return nil, err
	}
	if len(probs) == 0 {
		return nil, ErrInvalidChance
	}
	total := new(big.Rat)
	stored := make([]*big.Rat, len(probs))
	for i, p := range probs {
		if p.Sign() < 0 {
			return nil, fmt.Errorf("negative probability %s: %w", p.RatString(), ErrInvalidChance)
		}
		total.Add(total, p)
		stored[i] = new(big.Rat).Set(p)
	}
	if total.Cmp(big.NewRat(1, 1)) != 0 {
		return nil, fmt.Errorf("probabilities sum to %s: %w", total.RatString(), ErrInvalidChance)
	}
	t.nodes[n].player = Chance
	t.nodes[n].infoset = -1
	t.nodes[n].probs = stored
	return t.grow(n, len(probs)), nil
}

// SetPayoffs sets one payoff per player on a terminal node.
func (t *Tree) SetPayoffs(n NodeID, payoffs ...*big.Rat) error {
	if err := t.expandable(n); err != nil {
		return err
	}
	if len(payoffs) != t.players {
		return fmt.Errorf("expected %d payoffs, got %d: %w", t.players, len(payoffs), ErrInvalidPayoffs)
	}
	stored := make([]*big.Rat, len(payoffs))
	for i, u := range payoffs {
		stored[i] = new(big.Rat).Set(u)
	}
	t.nodes[n].payoffs = stored
	return nil
}

func (t *Tree) expandable(n NodeID) error {
	if n < 0 || int(n) >= len(t.nodes) {
		return fmt.Errorf("node %d: %w", n, ErrInvalidNode)
	}
	if len(t.nodes[n].children) > 0 {
		return fmt.Errorf("node %d: %w", n, ErrAlreadyExpanded)
	}
	return nil
}

func (t *Tree) grow(n NodeID, count int) []NodeID {
	children := make([]NodeID, count)
	for a := 0; a < count; a++ {
		t.nodes = append(t.nodes, node{parent: n, action: a, infoset: -1})
		children[a] = NodeID(len(t.nodes) - 1)
	}
	t.nodes[n].children = children
	t.nodes[n].payoffs = nil
	return append([]NodeID(nil), children...)
}

func (t *Tree) NumPlayers() int { return t.players }

func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) NumNodes() int { return len(t.nodes) }

func (t *Tree) IsTerminal(n NodeID) bool { return len(t.nodes[n].children) == 0 }

func (t *Tree) Children(n NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[n].children...)
}

func (t *Tree) Parent(n NodeID) NodeID { return t.nodes[n].parent }

func (t *Tree) Player(n NodeID) int { return t.nodes[n].player }

func (t *Tree) Infoset(n NodeID) InfosetID { return t.nodes[n].infoset }

func (t *Tree) NumActions(h InfosetID) int {
	if h < 0 || int(h) >= len(t.infosets) {
		return 0
	}
	return t.infosets[h].actions
}

func (t *Tree) Infosets(player int) []InfosetID {
	var ids []InfosetID
	for i, h := range t.infosets {
		if h.player == player {
			ids = append(ids, InfosetID(i))
		}
	}
	return ids
}

func (t *Tree) ChanceProb(n NodeID, action int) *big.Rat {
	return new(big.Rat).Set(t.nodes[n].probs[action])
}

func (t *Tree) Payoff(n NodeID, player int) *big.Rat {
	if player < 1 || player > t.players {
		panic(ErrInvalidPlayer)
	}
	if t.nodes[n].payoffs == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(t.nodes[n].payoffs[player-1])
}

// ownMove identifies a player's last move on a path: the information set and
// action taken, or the empty history.
type ownMove struct {
	infoset InfosetID
	action  int
}

var emptyHistory = ownMove{infoset: -1, action: -1}

// IsPerfectRecall reports whether every node of an information set is reached
// through the same last own move of the player, which, applied recursively,
// means players never forget what they knew or did.
func (t *Tree) IsPerfectRecall() bool {
	seen := make(map[InfosetID]ownMove)
	var walk func(n NodeID, last []ownMove) bool
	walk = func(n NodeID, last []ownMove) bool {
		nd := t.nodes[n]
		if len(nd.children) == 0 {
			return true
		}
		if nd.player != Chance {
			move := last[nd.player-1]
			if prev, ok := seen[nd.infoset]; ok && prev != move {
				return false
			}
			seen[nd.infoset] = move
		}
		for a, child := range nd.children {
			next := last
			if nd.player != Chance {
				next = append([]ownMove(nil), last...)
				next[nd.player-1] = ownMove{infoset: nd.infoset, action: a}
			}
			if !walk(child, next) {
				return false
			}
		}
		return true
	}
	start := make([]ownMove, t.players)
	for i := range start {
		start[i] = emptyHistory
	}
	return walk(t.Root(), start)
}
