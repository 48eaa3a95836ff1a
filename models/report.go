package models

import "time"

// Stat is a printed statistic.
type Stat struct {
	Label string
	Value string
}

// Analysis is the output of one catalog entry.
type Analysis struct {
	Name   string
	Title  string
	Charts []Chart
	Stats  []Stat
}

// InsightReport holds every analysis computed over the prepared trip table.
type InsightReport struct {
	Rows     int
	Analyses []*Analysis
}

// Charts returns every chart of the report in catalog order.
func (r *InsightReport) Charts() []Chart {
	var charts []Chart
	for _, a := range r.Analyses {
		charts = append(charts, a.Charts...)
	}
	return charts
}

// Analysis returns the analysis with the given name, or nil.
func (r *InsightReport) Analysis(name string) *Analysis {
	for _, a := range r.Analyses {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// StageCount records the row count after a pipeline stage.
type StageCount struct {
	Stage string `yaml:"stage"`
	Rows  int    `yaml:"rows"`
}

// RunManifest describes one toolkit run and the artifacts it produced.
type RunManifest struct {
	Input       string       `yaml:"input"`
	GeneratedAt time.Time    `yaml:"generated_at"`
	Stages      []StageCount `yaml:"stages"`
	Analyses    []string     `yaml:"analyses"`
	Charts      []string     `yaml:"charts,omitempty"`
	Tables      []string     `yaml:"tables,omitempty"`
	Workbook    string       `yaml:"workbook,omitempty"`
}
