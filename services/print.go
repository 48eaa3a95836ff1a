package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"bixi-eda/models"
)

const maxBarWidth = 40

// Print writes the report to w: statistics of every analysis and a text-bar
// rendition of its bar charts.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 BIKE-SHARE TRIP INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
	fmt.Fprintf(w, "  Trips analysed : \033[1m%d\033[0m\n\n", r.Rows)

	for _, a := range r.Analyses {
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", a.Title)
		fmt.Fprintf(w, "  %s\n", thin)

		for _, st := range a.Stats {
			fmt.Fprintf(w, "  %-22s : \033[1;32m%s\033[0m\n", st.Label, st.Value)
		}
		for _, c := range a.Charts {
			printChart(w, c)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func printChart(w io.Writer, c models.Chart) {
	switch chart := c.(type) {
	case *models.BarChart:
		fmt.Fprintf(w, "  %s\n", chart.Title)
		if len(chart.Labels) == 0 {
			fmt.Fprintf(w, "  No data\n")
			return
		}
		top := 0.0
		for _, v := range chart.Values {
			top = math.Max(top, v)
		}
		for i, label := range chart.Labels {
			width := 0
			if top > 0 {
				width = int(math.Round(chart.Values[i] / top * maxBarWidth))
			}
			fmt.Fprintf(w, "  %-12s %s (%.0f)\n", truncate(label, 12), strings.Repeat("█", width), chart.Values[i])
		}
	case *models.Histogram:
		for _, layer := range chart.Layers {
			total := 0.0
			for _, b := range layer.Bins {
				total += b.Count
			}
			fmt.Fprintf(w, "  %s: %d bins, %.0f values\n", layer.Label, len(layer.Bins), total)
		}
	case *models.LineChart:
		for _, series := range chart.Series {
			if len(series.Points) == 0 {
				fmt.Fprintf(w, "  %s: no data\n", series.Label)
				continue
			}
			lo, hi := series.Points[0].Y, series.Points[0].Y
			for _, p := range series.Points {
				lo = math.Min(lo, p.Y)
				hi = math.Max(hi, p.Y)
			}
			fmt.Fprintf(w, "  %s: %d points, min %.2f, max %.2f\n", series.Label, len(series.Points), lo, hi)
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
