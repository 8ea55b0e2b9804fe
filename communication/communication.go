package communication

import (
	"errors"
	"fmt"
	"time"

	"nash/experiments/metrics"
	"nash/game"
	"nash/meta"
)

var ErrInvalidRequest = errors.New("communication: invalid solve request")

// SolveRequest asks for the equilibria of a game. Zero limits are unlimited.
type SolveRequest struct {
	Game      *game.Document `json:"game"`
	StopAfter int            `json:"stop_after,omitempty"`
	MaxDepth  int            `json:"max_depth,omitempty"`
	Exact     bool           `json:"exact"`
	Tolerance float64        `json:"tolerance,omitempty"`
}

func (r *SolveRequest) Validate() error {
	if r.Game == nil {
		return fmt.Errorf("missing game: %w", ErrInvalidRequest)
	}
	if r.StopAfter < 0 || r.MaxDepth < 0 || r.Tolerance < 0 {
		return fmt.Errorf("negative limit: %w", ErrInvalidRequest)
	}
	if r.Tolerance >= meta.PERTURBATION {
		return fmt.Errorf("tolerance %g is not below %g: %w", r.Tolerance, meta.PERTURBATION, ErrInvalidRequest)
	}
	return nil
}

// Distribution is one player's strategy (Infoset -1) or behavior at one
// information set, as exact or decimal strings.
type Distribution struct {
	Player  int      `json:"player"`
	Infoset int      `json:"infoset"`
	Probs   []string `json:"probs"`
}

type Equilibrium struct {
	Distributions []Distribution `json:"distributions"`
	Payoffs       []float64      `json:"payoffs"`
}

type Metrics struct {
	Duration    string `json:"duration"`
	Paths       int    `json:"paths"`
	Pivots      int    `json:"pivots"`
	DeadEnds    int    `json:"dead_ends"`
	Equilibria  int    `json:"equilibria"`
	Depth       int    `json:"depth"`
	Interrupted bool   `json:"interrupted"`
}

func NewMetrics(m metrics.SolveMetric) Metrics {
	return Metrics{
		Duration:    m.Duration.Round(time.Microsecond).String(),
		Paths:       m.Paths,
		Pivots:      m.Pivots,
		DeadEnds:    m.DeadEnds,
		Equilibria:  m.Equilibria,
		Depth:       m.Depth,
		Interrupted: m.Interrupted,
	}
}

// SolveResponse carries the equilibria found, and an error message when the
// solve failed part way; the equilibria found before the failure are kept.
type SolveResponse struct {
	Equilibria []Equilibrium `json:"equilibria"`
	Metrics    Metrics       `json:"metrics"`
	Error      string        `json:"error,omitempty"`
}
