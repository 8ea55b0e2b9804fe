package engine

import (
	"context"
	"fmt"

	"nash/experiments/metrics"
	"nash/field"
	"nash/game"
	"nash/lcp"
	"nash/profile"
	"nash/searcher"
	"nash/tableau"

	"github.com/rs/zerolog/log"
)

// Solver runs the whole pipeline for one field: build the problem, explore
// its equilibria and turn each basis into a strategy profile.
type Solver[T any] struct {
	f       field.Field[T]
	options []searcher.Option
	metric  metrics.SolveMetric
}

// NewSolver always collects metrics; a collector passed in options replaces
// the default one.
func NewSolver[T any](f field.Field[T], options ...searcher.Option) *Solver[T] {
	return &Solver[T]{
		f:       f,
		options: append([]searcher.Option{searcher.WithMetrics()}, options...),
	}
}

func (s *Solver[T]) Field() field.Field[T] { return s.f }

// Metrics of the last solve.
func (s *Solver[T]) Metrics() metrics.SolveMetric { return s.metric }

// SolveStrategic returns the equilibria of a two-player strategic game (or of
// a game.Support of one) in discovery order. onEquilibrium, if given, sees
// each one as soon as it is found. Equilibria found before an error are
// returned with it.
func (s *Solver[T]) SolveStrategic(ctx context.Context, g game.Strategic, onEquilibrium func(profile.Mixed[T])) ([]profile.Mixed[T], error) {
	problem, err := lcp.BuildStrategic(s.f, g)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategic problem: %w", err)
	}
	log.Debug().Msgf("solving %dx%d strategic game", g.NumStrategies(1), g.NumStrategies(2))

	var found []profile.Mixed[T]
	err = s.explore(ctx, problem, func(bfs tableau.BFS[T]) {
		m := profile.ExtractMixed(problem, bfs)
		found = append(found, m)
		if onEquilibrium != nil {
			onEquilibrium(m)
		}
	})
	return found, err
}

// SolveExtensive returns behavior profiles of the equilibria of a two-player
// tree with perfect recall, computed on its sequence form.
func (s *Solver[T]) SolveExtensive(ctx context.Context, g game.Extensive, onEquilibrium func(profile.Behavior[T])) ([]profile.Behavior[T], error) {
	problem, err := lcp.BuildSequence(s.f, g)
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence form: %w", err)
	}
	log.Debug().Msgf("solving sequence form with %d and %d sequences", problem.Layout.Primal[0].Len, problem.Layout.Primal[1].Len)

	var found []profile.Behavior[T]
	err = s.explore(ctx, problem, func(bfs tableau.BFS[T]) {
		b := profile.ExtractBehavior(problem, bfs)
		found = append(found, b)
		if onEquilibrium != nil {
			onEquilibrium(b)
		}
	})
	return found, err
}

func (s *Solver[T]) explore(ctx context.Context, problem *lcp.Problem[T], emit func(tableau.BFS[T])) error {
	metric, err := searcher.NewLemke[T](s.options...).Explore(ctx, problem, func(bfs tableau.BFS[T]) error {
		emit(bfs)
		return nil
	})
	s.metric = metric
	if err != nil {
		return fmt.Errorf("failed to explore equilibria: %w", err)
	}
	log.Info().Msgf("found %d equilibria in %d paths, %d pivots, %v", metric.Equilibria, metric.Paths, metric.Pivots, metric.Duration)
	return nil
}
