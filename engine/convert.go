package engine

import (
	"nash/communication"
	"nash/field"
	"nash/profile"
)

func formatAll[T any](f field.Field[T], probs []T) []string {
	out := make([]string, len(probs))
	for i, p := range probs {
		out[i] = f.Format(p)
	}
	return out
}

// MixedDistributions lists one distribution per player with infoset -1.
func MixedDistributions[T any](f field.Field[T], m profile.Mixed[T]) []communication.Distribution {
	out := make([]communication.Distribution, 0, 2)
	for player := 1; player <= 2; player++ {
		out = append(out, communication.Distribution{
			Player:  player,
			Infoset: -1,
			Probs:   formatAll(f, m.Strategy(player)),
		})
	}
	return out
}

// BehaviorDistributions lists one distribution per information set.
func BehaviorDistributions[T any](f field.Field[T], b profile.Behavior[T]) []communication.Distribution {
	var out []communication.Distribution
	for player := 1; player <= 2; player++ {
		for _, l := range b.Locals(player) {
			out = append(out, communication.Distribution{
				Player:  player,
				Infoset: int(l.Infoset),
				Probs:   formatAll(f, l.Probs),
			})
		}
	}
	return out
}
