package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Writer struct {
	baseDir string
}

func NewWriter(dir string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	path := filepath.Join(w.baseDir, "run_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "game", "rows", "cols", "exact", "agreed", "stop_after", "max_depth",
		"duration", "paths", "pivots", "dead_ends", "equilibria", "depth", "interrupted"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write run records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.Game,
			strconv.Itoa(record.Rows),
			strconv.Itoa(record.Cols),
			strconv.FormatBool(record.Exact),
			strconv.FormatBool(record.Agreed),
			strconv.Itoa(record.StopAfter),
			strconv.Itoa(record.MaxDepth),
			record.Duration.String(),
			strconv.Itoa(record.Paths),
			strconv.Itoa(record.Pivots),
			strconv.Itoa(record.DeadEnds),
			strconv.Itoa(record.Equilibria),
			strconv.Itoa(record.Depth),
			strconv.FormatBool(record.Interrupted),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write run record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteEquilibria(records []EquilibriumRecord) error {
	path := filepath.Join(w.baseDir, "equilibria.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create equilibria file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"run", "equilibrium", "player", "infoset", "action", "probability"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write equilibria header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Equilibrium),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Infoset),
			strconv.Itoa(record.Action),
			record.Probability,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write equilibrium row: %w", err)
		}
	}

	return nil
}
