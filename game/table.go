package game

import (
	"fmt"
	"math/big"
)

// Table is an n-player strategic game stored as a payoff table.
type Table struct {
	dims    []int
	payoffs [][]*big.Rat // flat profile index -> payoff per player
}

var _ Strategic = (*Table)(nil)

// NewTable creates a game with dims[p] strategies for player p+1 and every
// payoff set to zero.
func NewTable(dims ...int) *Table {
	size := 1
	for _, d := range dims {
		if d <= 0 {
			panic("game: every player needs at least one strategy")
		}
		size *= d
	}
	payoffs := make([][]*big.Rat, size)
	for i := range payoffs {
		payoffs[i] = make([]*big.Rat, len(dims))
		for p := range payoffs[i] {
			payoffs[i][p] = new(big.Rat)
		}
	}
	return &Table{dims: append([]int(nil), dims...), payoffs: payoffs}
}

// Bimatrix builds a two-player game from integer payoff matrices for the row
// and column player.
func Bimatrix(a, b [][]int64) *Table {
	if len(a) == 0 || len(a) != len(b) {
		panic("game: bimatrix payoff matrices must have the same non-zero row count")
	}
	t := NewTable(len(a), len(a[0]))
	for i := range a {
		if len(a[i]) != len(a[0]) || len(b[i]) != len(a[0]) {
			panic("game: bimatrix rows must have the same length")
		}
		for j := range a[i] {
			t.payoffs[t.index([]int{i, j})] = []*big.Rat{big.NewRat(a[i][j], 1), big.NewRat(b[i][j], 1)}
		}
	}
	return t
}

// RationalBimatrix is Bimatrix with rational payoffs.
func RationalBimatrix(a, b [][]*big.Rat) *Table {
	if len(a) == 0 || len(a) != len(b) {
		panic("game: bimatrix payoff matrices must have the same non-zero row count")
	}
	t := NewTable(len(a), len(a[0]))
	for i := range a {
		for j := range a[i] {
			t.payoffs[t.index([]int{i, j})] = []*big.Rat{new(big.Rat).Set(a[i][j]), new(big.Rat).Set(b[i][j])}
		}
	}
	return t
}

func (t *Table) NumPlayers() int { return len(t.dims) }

func (t *Table) NumStrategies(player int) int {
	if player < 1 || player > len(t.dims) {
		return 0
	}
	return t.dims[player-1]
}

func (t *Table) Payoff(player int, profile []int) *big.Rat {
	if player < 1 || player > len(t.dims) {
		panic(ErrInvalidPlayer)
	}
	return new(big.Rat).Set(t.payoffs[t.index(profile)][player-1])
}

// SetPayoffs stores one payoff per player for a pure strategy profile.
func (t *Table) SetPayoffs(profile []int, payoffs ...*big.Rat) error {
	if len(payoffs) != len(t.dims) {
		return fmt.Errorf("expected %d payoffs, got %d: %w", len(t.dims), len(payoffs), ErrInvalidPayoffs)
	}
	if !t.valid(profile) {
		return fmt.Errorf("profile %v: %w", profile, ErrInvalidProfile)
	}
	stored := make([]*big.Rat, len(payoffs))
	for i, u := range payoffs {
		stored[i] = new(big.Rat).Set(u)
	}
	t.payoffs[t.index(profile)] = stored
	return nil
}

func (t *Table) valid(profile []int) bool {
	if len(profile) != len(t.dims) {
		return false
	}
	for i, s := range profile {
		if s < 0 || s >= t.dims[i] {
			return false
		}
	}
	return true
}

func (t *Table) index(profile []int) int {
	if !t.valid(profile) {
		panic(ErrInvalidProfile)
	}
	idx := 0
	for i, s := range profile {
		idx = idx*t.dims[i] + s
	}
	return idx
}
