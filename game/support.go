package game

import (
	"math/big"

	"nash/utils"
)

// Support restricts a strategic game to a subset of each player's strategies.
// It is a read-only view; strategies are renumbered in the order given.
type Support struct {
	parent     Strategic
	strategies [][]int
}

var _ Strategic = (*Support)(nil)

// NewSupport keeps strategies[p] for player p+1. Every player must keep at
// least one valid, distinct strategy.
func NewSupport(parent Strategic, strategies ...[]int) (*Support, error) {
	if len(strategies) != parent.NumPlayers() {
		return nil, ErrInvalidPlayer
	}
	kept := make([][]int, len(strategies))
	for p, list := range strategies {
		if len(list) == 0 {
			return nil, ErrInvalidProfile
		}
		for i, s := range list {
			if s < 0 || s >= parent.NumStrategies(p+1) || utils.FindIndex(list[:i], s) >= 0 {
				return nil, ErrInvalidProfile
			}
		}
		kept[p] = append([]int(nil), list...)
	}
	return &Support{parent: parent, strategies: kept}, nil
}

func (s *Support) NumPlayers() int { return s.parent.NumPlayers() }

func (s *Support) NumStrategies(player int) int {
	if player < 1 || player > len(s.strategies) {
		return 0
	}
	return len(s.strategies[player-1])
}

func (s *Support) Payoff(player int, profile []int) *big.Rat {
	return s.parent.Payoff(player, s.Lift(profile))
}

// Lift maps a profile over the support to the parent game's numbering.
func (s *Support) Lift(profile []int) []int {
	lifted := make([]int, len(profile))
	for p, i := range profile {
		lifted[p] = s.strategies[p][i]
	}
	return lifted
}

// Original returns the parent strategy index of a support strategy.
func (s *Support) Original(player, strategy int) int {
	return s.strategies[player-1][strategy]
}

// Restrict returns the support index of a parent strategy, or -1.
func (s *Support) Restrict(player, strategy int) int {
	return utils.FindIndex(s.strategies[player-1], strategy)
}
