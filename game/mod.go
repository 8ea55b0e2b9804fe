package game

import (
	"errors"
	"math/big"
)

// Games are borrowed read-only by the solver; every entity is addressed
// through a stable integer handle owned by the game.

type NodeID int

type InfosetID int

// Chance is the player number reported for chance nodes. Personal players are
// numbered from 1.
const Chance = 0

var (
	ErrInvalidPlayer   = errors.New("game: invalid player")
	ErrInvalidProfile  = errors.New("game: invalid strategy profile")
	ErrInvalidNode     = errors.New("game: invalid node")
	ErrInvalidInfoset  = errors.New("game: invalid information set")
	ErrInvalidPayoffs  = errors.New("game: invalid payoffs")
	ErrInvalidChance   = errors.New("game: invalid chance probabilities")
	ErrAlreadyExpanded = errors.New("game: node already has children")
)

// Strategic is a finite game in strategic (normal) form.
type Strategic interface {
	NumPlayers() int
	// NumStrategies is the number of pure strategies of player (1-based).
	NumStrategies(player int) int
	// Payoff of player when every player i plays profile[i-1].
	Payoff(player int, profile []int) *big.Rat
}

// Extensive is a finite game tree with information sets.
type Extensive interface {
	NumPlayers() int
	Root() NodeID
	IsTerminal(n NodeID) bool
	// Children are ordered by action index.
	Children(n NodeID) []NodeID
	// Player moving at n: Chance or 1..NumPlayers.
	Player(n NodeID) int
	Infoset(n NodeID) InfosetID
	NumActions(h InfosetID) int
	// Infosets lists the information sets of a personal player in a stable order.
	Infosets(player int) []InfosetID
	ChanceProb(n NodeID, action int) *big.Rat
	// Payoff at a terminal node.
	Payoff(n NodeID, player int) *big.Rat
	IsPerfectRecall() bool
}

// PayoffRange returns the smallest and largest payoff over all players and
// pure strategy profiles.
func PayoffRange(g Strategic) (lo, hi *big.Rat) {
	ForEachProfile(g, func(profile []int) {
		for p := 1; p <= g.NumPlayers(); p++ {
			u := g.Payoff(p, profile)
			if lo == nil || u.Cmp(lo) < 0 {
				lo = u
			}
			if hi == nil || u.Cmp(hi) > 0 {
				hi = u
			}
		}
	})
	if lo == nil {
		return new(big.Rat), new(big.Rat)
	}
	return new(big.Rat).Set(lo), new(big.Rat).Set(hi)
}

// ForEachProfile visits every pure strategy profile in lexicographic order,
// the last player's strategy varying fastest. The slice is reused between calls.
func ForEachProfile(g Strategic, visit func(profile []int)) {
	n := g.NumPlayers()
	for p := 1; p <= n; p++ {
		if g.NumStrategies(p) == 0 {
			return
		}
	}
	profile := make([]int, n)
	for {
		visit(profile)
		i := n - 1
		for ; i >= 0; i-- {
			profile[i]++
			if profile[i] < g.NumStrategies(i+1) {
				break
			}
			profile[i] = 0
		}
		if i < 0 {
			return
		}
	}
}
