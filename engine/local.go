package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"nash/communication"
	"nash/field"
	"nash/game"
	"nash/meta"
	"nash/profile"
	"nash/searcher"
)

// Local solves requests in the calling goroutine.
type Local struct{}

var _ Engine = (*Local)(nil)

func NewLocal() *Local {
	return &Local{}
}

// Solve picks the rational field for exact requests and the floating field
// otherwise. The response holds whatever was found even when err is not nil.
func (l *Local) Solve(ctx context.Context, req communication.SolveRequest) (*communication.SolveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Exact {
		return solve(ctx, NewSolver[*big.Rat](field.NewRational(), limits(req)...), req)
	}
	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = meta.TOLERANCE
	}
	return solve(ctx, NewSolver[float64](field.NewFloat(tolerance), limits(req)...), req)
}

func limits(req communication.SolveRequest) []searcher.Option {
	return []searcher.Option{searcher.WithStopAfter(req.StopAfter), searcher.WithMaxDepth(req.MaxDepth)}
}

func solve[T any](ctx context.Context, s *Solver[T], req communication.SolveRequest) (*communication.SolveResponse, error) {
	resp := &communication.SolveResponse{Equilibria: []communication.Equilibrium{}}
	var err error
	if req.Game.IsStrategic() {
		err = solveStrategic(ctx, s, req, resp)
	} else {
		err = solveExtensive(ctx, s, req, resp)
	}
	resp.Metrics = communication.NewMetrics(s.Metrics())
	if err != nil {
		resp.Error = err.Error()
	}
	return resp, err
}

func solveStrategic[T any](ctx context.Context, s *Solver[T], req communication.SolveRequest, resp *communication.SolveResponse) error {
	g, err := req.Game.StrategicGame()
	if err != nil {
		return err
	}
	found, err := s.SolveStrategic(ctx, g, nil)
	equilibria, evalErr := mixedEquilibria(s.Field(), g, found)
	resp.Equilibria = append(resp.Equilibria, equilibria...)
	return errors.Join(err, evalErr)
}

// mixedEquilibria converts every profile. One whose payoffs cannot be
// evaluated is still listed, without payoffs.
func mixedEquilibria[T any](f field.Field[T], g game.Strategic, found []profile.Mixed[T]) ([]communication.Equilibrium, error) {
	var out []communication.Equilibrium
	var errs []error
	for i, m := range found {
		eq := communication.Equilibrium{Distributions: MixedDistributions(f, m)}
		payoffs, err := profile.Payoffs(g, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to evaluate equilibrium %d: %w", i+1, err))
		} else {
			eq.Payoffs = payoffs[:]
		}
		out = append(out, eq)
	}
	return out, errors.Join(errs...)
}

func solveExtensive[T any](ctx context.Context, s *Solver[T], req communication.SolveRequest, resp *communication.SolveResponse) error {
	g, err := req.Game.ExtensiveGame()
	if err != nil {
		return err
	}
	found, err := s.SolveExtensive(ctx, g, nil)
	for _, b := range found {
		payoffs := profile.ExpectedPayoffs(g, b)
		resp.Equilibria = append(resp.Equilibria, communication.Equilibrium{
			Distributions: BehaviorDistributions(s.Field(), b),
			Payoffs:       payoffs[:],
		})
	}
	return err
}
