package experiments

import (
	"context"
	"fmt"
	"math/big"

	"nash/experiments/metrics"
	"nash/field"
	"nash/meta"
	"nash/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// ThroughputConfig is one solver setting measured by the throughput experiment.
type ThroughputConfig struct {
	Exact     bool
	StopAfter int
	MaxDepth  int
}

var throughputConfigs = []ThroughputConfig{
	{Exact: true, StopAfter: 1},
	{Exact: false, StopAfter: 1},
	{Exact: true, MaxDepth: 2},
	{Exact: false, MaxDepth: 2},
}

var throughputSizes = []Size{{4, 4}, {6, 6}, {8, 8}}

// RunThroughputExperiment measures paths, pivots and time per setting on the
// same random games.
func RunThroughputExperiment(ctx context.Context, dir string, seed uint64) error {
	const NumGames = 5 // Per size

	r := rand.New(rand.NewSource(seed))
	var runs []metrics.RunRecord

	log.Info().Msgf("starting throughput experiment...")
	for _, size := range throughputSizes {
		for i := 0; i < NumGames; i++ {
			g := RandomBimatrix(r, size.Rows, size.Cols, MaxPayoff)
			name := fmt.Sprintf("random-%dx%d-%d", size.Rows, size.Cols, i)
			for _, config := range throughputConfigs {
				options := []searcher.Option{searcher.WithStopAfter(config.StopAfter), searcher.WithMaxDepth(config.MaxDepth)}
				var result run
				var err error
				if config.Exact {
					result, err = solve[*big.Rat](ctx, field.NewRational(), g, options...)
				} else {
					result, err = solve[float64](ctx, field.NewFloat(meta.TOLERANCE), g, options...)
				}
				if err != nil {
					return fmt.Errorf("failed to solve %s with %+v: %w", name, config, err)
				}
				runs = append(runs, metrics.RunRecord{
					ID:          len(runs) + 1,
					Game:        name,
					Rows:        size.Rows,
					Cols:        size.Cols,
					Exact:       config.Exact,
					SolveMetric: result.metric,
				})
				log.Info().Msgf("%s %+v: %d equilibria, %d pivots in %v", name, config, result.metric.Equilibria, result.metric.Pivots, result.metric.Duration)
			}
		}
	}
	log.Info().Msgf("completed throughput experiment")
	return store(dir, "throughput", runs, nil)
}
