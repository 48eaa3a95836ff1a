package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bixi-eda/models"
)

const statsFile = "stats.csv"

// CSVWriter writes the data behind every chart to <dir>/<chart>.csv and all
// statistics to <dir>/stats.csv. It is safe for concurrent use.
type CSVWriter struct {
	mu    sync.Mutex
	dir   string
	files []string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// Write writes one file per chart plus the statistics file, truncating
// previous output.
func (c *CSVWriter) Write(report *models.InsightReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := [][]string{{"analysis", "label", "value"}}
	for _, a := range report.Analyses {
		for _, chart := range a.Charts {
			path := filepath.Join(c.dir, chart.ChartName()+".csv")
			if err := writeCSV(path, chart.Table()); err != nil {
				return err
			}
			c.files = append(c.files, path)
		}
		for _, st := range a.Stats {
			stats = append(stats, []string{a.Name, st.Label, st.Value})
		}
	}

	path := filepath.Join(c.dir, statsFile)
	if err := writeCSV(path, stats); err != nil {
		return err
	}
	c.files = append(c.files, path)
	return nil
}

// Files returns the paths written so far.
func (c *CSVWriter) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.files...)
}

// Close is a no-op; every file is closed as soon as it is written.
func (c *CSVWriter) Close() error { return nil }

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write %q: %w", path, err)
	}
	return f.Close()
}
