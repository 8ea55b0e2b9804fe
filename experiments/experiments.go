package experiments

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"slices"

	"nash/engine"
	"nash/experiments/metrics"
	"nash/field"
	"nash/game"
	"nash/meta"
	"nash/profile"
	"nash/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const (
	NumGames  = 30 // Per game size
	MaxPayoff = 100
)

type Size struct {
	Rows int
	Cols int
}

var agreementSizes = []Size{{2, 2}, {3, 3}, {4, 4}, {5, 5}, {3, 6}}

// RandomBimatrix draws integer payoffs uniformly from [-maxPayoff, maxPayoff].
func RandomBimatrix(r *rand.Rand, rows, cols int, maxPayoff int64) *game.Table {
	a, b := make([][]int64, rows), make([][]int64, rows)
	for i := 0; i < rows; i++ {
		a[i], b[i] = make([]int64, cols), make([]int64, cols)
		for j := 0; j < cols; j++ {
			a[i][j] = r.Int63n(2*maxPayoff+1) - maxPayoff
			b[i][j] = r.Int63n(2*maxPayoff+1) - maxPayoff
		}
	}
	return game.Bimatrix(a, b)
}

// run is the outcome of solving one game with one field.
type run struct {
	supports [][2][]int
	metric   metrics.SolveMetric
	probs    [][2][]string
}

func solve[T any](ctx context.Context, f field.Field[T], g game.Strategic, options ...searcher.Option) (run, error) {
	s := engine.NewSolver(f, options...)
	found, err := s.SolveStrategic(ctx, g, nil)
	out := run{metric: s.Metrics()}
	for _, m := range found {
		out.supports = append(out.supports, m.Support())
		dist := engine.MixedDistributions(f, m)
		out.probs = append(out.probs, [2][]string{dist[0].Probs, dist[1].Probs})
		if regret, rerr := profile.Regret(g, m); rerr == nil && (regret[0] > 1e-6 || regret[1] > 1e-6) {
			log.Warn().Msgf("equilibrium %v has regret %v", m, regret)
		}
	}
	return out, err
}

func agree(a, b [][2][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !slices.Equal(a[i][0], b[i][0]) || !slices.Equal(a[i][1], b[i][1]) {
			return false
		}
	}
	return true
}

// RunAgreementExperiment solves random games with the rational and the
// floating field and records whether both find the same supports in the same
// order, plus every exact equilibrium.
func RunAgreementExperiment(ctx context.Context, dir string, seed uint64) error {
	r := rand.New(rand.NewSource(seed))
	var runs []metrics.RunRecord
	var equilibria []metrics.EquilibriumRecord
	disagreements := 0

	log.Info().Msgf("starting agreement experiment...")

	for si, size := range agreementSizes {
		log.Info().Msgf("starting size %d of %d: %dx%d...", si+1, len(agreementSizes), size.Rows, size.Cols)
		for i := 0; i < NumGames; i++ {
			g := RandomBimatrix(r, size.Rows, size.Cols, MaxPayoff)
			name := fmt.Sprintf("random-%dx%d-%d", size.Rows, size.Cols, i)

			exact, err := solve[*big.Rat](ctx, field.NewRational(), g)
			if err != nil {
				return fmt.Errorf("failed to solve %s exactly: %w", name, err)
			}
			approx, err := solve[float64](ctx, field.NewFloat(meta.TOLERANCE), g)
			if err != nil {
				return fmt.Errorf("failed to solve %s in floating point: %w", name, err)
			}
			agreed := agree(exact.supports, approx.supports)
			if !agreed {
				disagreements++
				log.Warn().Msgf("%s: %d exact and %d floating equilibria disagree", name, len(exact.supports), len(approx.supports))
			}

			runs = append(runs,
				metrics.RunRecord{ID: len(runs) + 1, Game: name, Rows: size.Rows, Cols: size.Cols, Exact: true, Agreed: agreed, SolveMetric: exact.metric},
				metrics.RunRecord{ID: len(runs) + 2, Game: name, Rows: size.Rows, Cols: size.Cols, Exact: false, Agreed: agreed, SolveMetric: approx.metric},
			)
			equilibria = append(equilibria, equilibriumRecords(len(runs)-1, exact.probs)...)
		}
		log.Info().Msgf("completed size %d of %d", si+1, len(agreementSizes))
	}

	log.Info().Msgf("completed agreement experiment with %d disagreements in %d games", disagreements, len(runs)/2)
	return store(dir, "agreement", runs, equilibria)
}

func equilibriumRecords(runID int, probs [][2][]string) []metrics.EquilibriumRecord {
	var records []metrics.EquilibriumRecord
	for e, eq := range probs {
		for p, strategy := range eq {
			for a, prob := range strategy {
				records = append(records, metrics.EquilibriumRecord{
					Run:         runID,
					Equilibrium: e + 1,
					Player:      p + 1,
					Infoset:     -1,
					Action:      a,
					Probability: prob,
				})
			}
		}
	}
	return records
}

func store(dir, name string, runs []metrics.RunRecord, equilibria []metrics.EquilibriumRecord) error {
	writer, err := metrics.NewWriter(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteRunRecords(runs); err != nil {
		return fmt.Errorf("failed to store run records: %w", err)
	}
	log.Info().Msg("stored run records")

	if equilibria != nil {
		if err := writer.WriteEquilibria(equilibria); err != nil {
			return fmt.Errorf("failed to store equilibria: %w", err)
		}
		log.Info().Msg("stored equilibria")
	}
	log.Info().Msgf("results in %s", writer.Dir())
	return nil
}
