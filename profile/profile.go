package profile

import (
	"errors"
	"fmt"
	"strings"

	"nash/field"
	"nash/game"
	"nash/lcp"
	"nash/tableau"
	"nash/utils"
)

var ErrInvalidProfile = errors.New("profile: invalid probabilities")

// distribution turns the action values of one information set into
// probabilities. A set whose actions all have value zero was never reached
// and gets the uniform distribution.
func distribution[T any](f field.Field[T], bfs tableau.BFS[T], info lcp.InfosetLayout) []T {
	values := make([]T, len(info.Actions))
	for i, a := range info.Actions {
		values[i] = bfs.Primal(a)
	}
	sum := field.Sum(f, values)
	if f.Sign(sum) > 0 {
		for i := range values {
			values[i] = f.Div(values[i], sum)
		}
		return values
	}
	return centroid(f, info.NumActions)
}

func centroid[T any](f field.Field[T], n int) []T {
	if n == 0 {
		return nil
	}
	p := f.Div(f.One(), f.FromInt(int64(n)))
	out := make([]T, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// validate checks that probs is a probability vector.
func validate[T any](f field.Field[T], probs []T) error {
	for i, p := range probs {
		if f.Sign(p) < 0 {
			return fmt.Errorf("probability %d is %s: %w", i, f.Format(p), ErrInvalidProfile)
		}
	}
	if sum := field.Sum(f, probs); f.Compare(sum, f.One()) != 0 {
		return fmt.Errorf("probabilities sum to %s: %w", f.Format(sum), ErrInvalidProfile)
	}
	return nil
}

func support[T any](f field.Field[T], probs []T) []int {
	return utils.Indices(probs, func(p T) bool { return f.Sign(p) > 0 })
}

func toFloat64[T any](f field.Field[T], probs []T) []float64 {
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = f.Float64(p)
	}
	return out
}

func format[T any](f field.Field[T], probs []T) string {
	parts := make([]string, len(probs))
	for i, p := range probs {
		parts[i] = f.Format(p)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Mixed is a mixed strategy profile of a two-player strategic game.
type Mixed[T any] struct {
	f          field.Field[T]
	strategies [2][]T
}

func NewMixed[T any](f field.Field[T], x, y []T) Mixed[T] {
	return Mixed[T]{f: f, strategies: [2][]T{x, y}}
}

// ExtractMixed reads the mixed profile of a strategic problem's basis.
func ExtractMixed[T any](p *lcp.Problem[T], bfs tableau.BFS[T]) Mixed[T] {
	var m Mixed[T]
	m.f = p.Field
	for player := range m.strategies {
		m.strategies[player] = distribution(p.Field, bfs, p.Layout.Infosets[player][0])
	}
	return m
}

// Strategy of player (1-based).
func (m Mixed[T]) Strategy(player int) []T {
	return append([]T(nil), m.strategies[player-1]...)
}

func (m Mixed[T]) Prob(player, strategy int) T {
	return m.strategies[player-1][strategy]
}

func (m Mixed[T]) Float64() [2][]float64 {
	return [2][]float64{toFloat64(m.f, m.strategies[0]), toFloat64(m.f, m.strategies[1])}
}

// Support lists the strategies played with positive probability.
func (m Mixed[T]) Support() [2][]int {
	return [2][]int{support(m.f, m.strategies[0]), support(m.f, m.strategies[1])}
}

func (m Mixed[T]) Format() string {
	return format(m.f, m.strategies[0]) + " " + format(m.f, m.strategies[1])
}

func (m Mixed[T]) String() string { return m.Format() }

func (m Mixed[T]) Validate() error {
	for player, s := range m.strategies {
		if err := validate(m.f, s); err != nil {
			return fmt.Errorf("player %d: %w", player+1, err)
		}
	}
	return nil
}

// Local is the behavior strategy at one information set.
type Local[T any] struct {
	Infoset game.InfosetID
	Probs   []T
}

// Behavior is a behavior strategy profile of a two-player tree.
type Behavior[T any] struct {
	f      field.Field[T]
	locals [2][]Local[T]
}

// ExtractBehavior reads the behavior profile of a sequence-form problem's
// basis, one distribution per information set in the game's order.
func ExtractBehavior[T any](p *lcp.Problem[T], bfs tableau.BFS[T]) Behavior[T] {
	var b Behavior[T]
	b.f = p.Field
	for player, infosets := range p.Layout.Infosets {
		for _, info := range infosets {
			b.locals[player] = append(b.locals[player], Local[T]{
				Infoset: info.Infoset,
				Probs:   distribution(p.Field, bfs, info),
			})
		}
	}
	return b
}

// Locals of player (1-based).
func (b Behavior[T]) Locals(player int) []Local[T] {
	return append([]Local[T](nil), b.locals[player-1]...)
}

// Infoset returns the distribution at h, or nil when player has no such set.
func (b Behavior[T]) Infoset(player int, h game.InfosetID) []T {
	for _, l := range b.locals[player-1] {
		if l.Infoset == h {
			return append([]T(nil), l.Probs...)
		}
	}
	return nil
}

func (b Behavior[T]) Float64() [2][][]float64 {
	var out [2][][]float64
	for player, locals := range b.locals {
		for _, l := range locals {
			out[player] = append(out[player], toFloat64(b.f, l.Probs))
		}
	}
	return out
}

func (b Behavior[T]) Support() [2][][]int {
	var out [2][][]int
	for player, locals := range b.locals {
		for _, l := range locals {
			out[player] = append(out[player], support(b.f, l.Probs))
		}
	}
	return out
}

func (b Behavior[T]) Format() string {
	var sb strings.Builder
	for player, locals := range b.locals {
		if player > 0 {
			sb.WriteString(" |")
		}
		for _, l := range locals {
			fmt.Fprintf(&sb, " %d:%s", l.Infoset, format(b.f, l.Probs))
		}
	}
	return strings.TrimSpace(sb.String())
}

func (b Behavior[T]) String() string { return b.Format() }

func (b Behavior[T]) Validate() error {
	for player, locals := range b.locals {
		for _, l := range locals {
			if err := validate(b.f, l.Probs); err != nil {
				return fmt.Errorf("player %d, information set %d: %w", player+1, l.Infoset, err)
			}
		}
	}
	return nil
}
