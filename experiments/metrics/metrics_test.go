package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		c := NewCollector()
		c.Start(3, 2)
		c.AddPath()
		c.AddPath()
		c.AddPivots(7)
		c.AddDeadEnd()
		c.AddEquilibrium()
		c.SetDepth(2)
		c.SetDepth(1)
		c.SetInterrupted(true)

		m := c.Complete()
		require.Equal(t, 3, m.StopAfter)
		require.Equal(t, 2, m.MaxDepth)
		require.Equal(t, 2, m.Paths)
		require.Equal(t, 7, m.Pivots)
		require.Equal(t, 1, m.DeadEnds)
		require.Equal(t, 1, m.Equilibria)
		require.Equal(t, 2, m.Depth, "Depth should keep the maximum")
		require.True(t, m.Interrupted)
		require.Greater(t, m.Duration, time.Duration(0))
	})

	t.Run("concurrent updates", func(t *testing.T) {
		c := NewCollector()
		c.Start(0, 0)
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(depth int) {
				defer wg.Done()
				c.AddPath()
				c.AddPivots(2)
				c.SetDepth(depth)
			}(i)
		}
		wg.Wait()
		m := c.Complete()
		require.Equal(t, 16, m.Paths)
		require.Equal(t, 32, m.Pivots)
		require.Equal(t, 15, m.Depth)
	})

	t.Run("dummy", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, 1)
		c.AddPath()
		c.AddEquilibrium()
		require.Equal(t, SolveMetric{}, c.Complete())
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.WriteEquilibria([]EquilibriumRecord{
		{Run: 1, Equilibrium: 2, Player: 1, Infoset: -1, Action: 0, Probability: "1/3"},
	}))

	f, err := os.Open(filepath.Join(w.Dir(), "equilibria.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"run", "equilibrium", "player", "infoset", "action", "probability"},
		{"1", "2", "1", "-1", "0", "1/3"},
	}, rows)
}
