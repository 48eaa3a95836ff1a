package models

import (
	"strconv"
	"time"
)

// Chart is one visual artifact produced by an analysis.
type Chart interface {
	// ChartName is a file-safe identifier, unique within a report.
	ChartName() string
	// ChartTitle is the human readable heading.
	ChartTitle() string
	// Table returns the plotted data as a header row followed by data rows.
	Table() [][]string
}

// BarChart is a categorical count chart.
type BarChart struct {
	Name       string
	Title      string
	XLabel     string
	YLabel     string
	Labels     []string
	Values     []float64
	Horizontal bool
}

func (c *BarChart) ChartName() string  { return c.Name }
func (c *BarChart) ChartTitle() string { return c.Title }

func (c *BarChart) Table() [][]string {
	rows := [][]string{{"label", "value"}}
	for i, label := range c.Labels {
		rows = append(rows, []string{label, formatFloat(c.Values[i])})
	}
	return rows
}

// HistogramBin counts values in [Min, Max).
type HistogramBin struct {
	Min   float64
	Max   float64
	Count float64
}

// HistogramLayer is one population drawn on a histogram.
type HistogramLayer struct {
	Label string
	Bins  []HistogramBin
}

// Point is an (x, y) pair.
type Point struct {
	X float64
	Y float64
}

// Histogram holds one or more overlaid binned distributions and an optional
// density curve scaled to counts.
type Histogram struct {
	Name    string
	Title   string
	XLabel  string
	YLabel  string
	Layers  []HistogramLayer
	Density []Point
}

func (c *Histogram) ChartName() string  { return c.Name }
func (c *Histogram) ChartTitle() string { return c.Title }

func (c *Histogram) Table() [][]string {
	rows := [][]string{{"layer", "bin_min", "bin_max", "count"}}
	for _, layer := range c.Layers {
		for _, b := range layer.Bins {
			rows = append(rows, []string{layer.Label, formatFloat(b.Min), formatFloat(b.Max), formatFloat(b.Count)})
		}
	}
	return rows
}

// LineSeries is one named line.
type LineSeries struct {
	Label  string
	Points []Point
}

// LineChart draws one or more series. When XLabels is set, X values index
// into it; when TimeAxis is set, X values are Unix seconds.
type LineChart struct {
	Name     string
	Title    string
	XLabel   string
	YLabel   string
	XLabels  []string
	TimeAxis bool
	Series   []LineSeries
}

func (c *LineChart) ChartName() string  { return c.Name }
func (c *LineChart) ChartTitle() string { return c.Title }

func (c *LineChart) Table() [][]string {
	rows := [][]string{{"series", "x", "y"}}
	for _, s := range c.Series {
		for _, p := range s.Points {
			rows = append(rows, []string{s.Label, c.xText(p.X), formatFloat(p.Y)})
		}
	}
	return rows
}

func (c *LineChart) xText(x float64) string {
	switch {
	case c.TimeAxis:
		return time.Unix(int64(x), 0).UTC().Format("2006-01-02")
	case len(c.XLabels) > 0:
		i := int(x)
		if i >= 0 && i < len(c.XLabels) && float64(i) == x {
			return c.XLabels[i]
		}
	}
	return formatFloat(x)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
