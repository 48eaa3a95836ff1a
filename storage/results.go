package storage

import (
	"strconv"

	"bixi-eda/models"
)

const statsSeries = "stats"

// Result is one flattened data point of an analysis: a chart value or a
// printed statistic. Statistics have an empty Chart and the "stats" series.
type Result struct {
	Analysis string
	Chart    string
	Series   string
	Label    string
	Value    string
}

// Flatten turns a report into result rows in catalog order: each analysis'
// chart data followed by its statistics.
func Flatten(report *models.InsightReport) []Result {
	var out []Result
	for _, a := range report.Analyses {
		for _, c := range a.Charts {
			out = append(out, chartResults(a.Name, c)...)
		}
		for _, st := range a.Stats {
			out = append(out, Result{Analysis: a.Name, Series: statsSeries, Label: st.Label, Value: st.Value})
		}
	}
	return out
}

func chartResults(analysis string, c models.Chart) []Result {
	var out []Result
	add := func(series, label string, v float64) {
		out = append(out, Result{
			Analysis: analysis,
			Chart:    c.ChartName(),
			Series:   series,
			Label:    label,
			Value:    strconv.FormatFloat(v, 'f', -1, 64),
		})
	}

	switch chart := c.(type) {
	case *models.BarChart:
		for i, label := range chart.Labels {
			add(chart.YLabel, label, chart.Values[i])
		}
	case *models.Histogram:
		for _, layer := range chart.Layers {
			for _, b := range layer.Bins {
				add(layer.Label, binLabel(b), b.Count)
			}
		}
	case *models.LineChart:
		// x is taken from the tabular form, which renders dates and weekday names
		rows := chart.Table()
		for _, row := range rows[1:] {
			v, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				continue
			}
			add(row[0], row[1], v)
		}
	}
	return out
}

func binLabel(b models.HistogramBin) string {
	return "[" + strconv.FormatFloat(b.Min, 'f', -1, 64) + ", " + strconv.FormatFloat(b.Max, 'f', -1, 64) + ")"
}
