package searcher

import (
	"context"
	"errors"
	"fmt"

	"nash/experiments/metrics"
	"nash/lcp"
	"nash/meta"
	"nash/tableau"

	"github.com/rs/zerolog/log"
)

type Option func(c *config)

type config struct {
	stopAfter int
	maxDepth  int
	maxPivots int
	metrics   metrics.Collector
}

// WithStopAfter ends the search once n equilibria were found. 0 is unlimited.
func WithStopAfter(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.stopAfter = n
		}
	}
}

// WithMaxDepth bounds the branching depth of the search. 0 is unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth >= 0 {
			c.maxDepth = depth
		}
	}
}

func WithMaxPivots(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPivots = n
		}
	}
}

func WithMetrics() Option {
	return func(c *config) {
		c.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(c *config) {
		if collector != nil {
			c.metrics = collector
		}
	}
}

// Lemke enumerates equilibria of an lcp.Problem: the path from the artificial
// ray gives the first one, and every equilibrium found is branched from by
// perturbing each other entry of the covering vector in turn.
type Lemke[T any] struct {
	config
}

func NewLemke[T any](options ...Option) *Lemke[T] {
	l := &Lemke[T]{config{ // Default values
		stopAfter: STOP_AFTER,
		maxDepth:  MAX_DEPTH,
		maxPivots: MAX_PIVOTS,
		metrics:   metrics.NewDummyCollector(),
	}}
	for _, option := range options {
		option(&l.config)
	}
	return l
}

// Explore calls visit for every distinct equilibrium in discovery order.
// Reaching the equilibrium limit or cancelling ctx ends the search early
// without an error. A failure on the first path, a pivot limit or an error of
// visit is returned.
func (l *Lemke[T]) Explore(ctx context.Context, problem *lcp.Problem[T], visit Visit[T]) (metrics.SolveMetric, error) {
	l.metrics.Start(l.stopAfter, l.maxDepth)
	f := problem.Field
	e := &explorer[T]{
		config:       l.config,
		ctx:          ctx,
		problem:      problem,
		visit:        visit,
		found:        &accumulator[T]{stopAfter: l.stopAfter},
		perturbation: f.Div(f.FromInt(meta.PERTURBATION_NUM), f.FromInt(meta.PERTURBATION_DEN)),
	}

	err := e.explore(-1, tableau.New(problem), 0)
	switch {
	case errors.Is(err, errLimitReached):
		log.Debug().Msgf("stopped after %d equilibria", e.found.count())
		err = nil
	case errors.Is(err, errInterrupted):
		log.Info().Msgf("search interrupted after %d equilibria", e.found.count())
		l.metrics.SetInterrupted(true)
		err = nil
	}
	metric := l.metrics.Complete()
	if err == nil {
		log.Debug().Msgf("found %d equilibria", e.found.count())
	}
	return metric, err
}

type explorer[T any] struct {
	config
	ctx          context.Context
	problem      *lcp.Problem[T]
	visit        Visit[T]
	found        *accumulator[T]
	perturbation T
}

// explore branches from the equilibrium of t, which was reached by
// perturbing covering entry j.
func (e *explorer[T]) explore(j int, t *tableau.Tableau[T], depth int) error {
	if e.maxDepth != 0 && depth > e.maxDepth {
		return nil
	}
	if e.ctx.Err() != nil {
		return errInterrupted
	}
	e.metrics.SetDepth(depth)

	if depth == 0 {
		c := t.Clone()
		if err := e.follow(NewPath(c)); err != nil {
			return fmt.Errorf("failed to follow the path from the artificial ray: %w", err)
		}
		if _, err := e.record(c); err != nil {
			return err
		}
		return e.explore(e.problem.Bootstrap, c, 1)
	}

	for i := 0; i < t.Size(); i++ {
		if i == j {
			continue
		}
		if e.ctx.Err() != nil {
			return errInterrupted
		}

		c := t.Clone()
		c.ResetCovering()
		c.Perturb(i, e.perturbation)
		err := c.Refactor()
		if err == nil {
			err = e.follow(ResumePath(c))
		}
		if err != nil {
			if !isDeadEnd(err) {
				return err
			}
			log.Debug().Msgf("depth %d: branch %d is a dead end: %v", depth, i, err)
			e.metrics.AddDeadEnd()
			continue
		}

		isNew, err := e.record(c)
		if err != nil {
			return err
		}
		if isNew {
			if err := e.explore(i, c, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *explorer[T]) follow(p *Path[T]) error {
	e.metrics.AddPath()
	err := p.Run(e.maxPivots)
	e.metrics.AddPivots(p.Pivots())
	return err
}

// record adds the basis of t to the solutions and hands new ones to visit.
func (e *explorer[T]) record(t *tableau.Tableau[T]) (bool, error) {
	bfs := t.BFS()
	if !e.found.add(bfs) {
		return false, nil
	}
	e.metrics.AddEquilibrium()
	log.Debug().Msgf("equilibrium %d: %s", e.found.count(), bfs)
	if e.visit != nil {
		if err := e.visit(bfs); err != nil {
			return true, err
		}
	}
	if e.found.full() {
		return true, errLimitReached
	}
	return true, nil
}
