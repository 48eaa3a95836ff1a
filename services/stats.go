package services

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"bixi-eda/models"
)

type keyCount struct {
	key   string
	count int
}

// countByKey counts keys and returns them in first-encounter order.
func countByKey(keys []string) ([]string, map[string]int) {
	counts := make(map[string]int)
	var order []string
	for _, k := range keys {
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	return order, counts
}

// sortCategories orders numeric labels numerically, ahead of all other
// labels, which sort lexically.
func sortCategories(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil || errB == nil:
			return errA == nil
		}
		return keys[i] < keys[j]
	})
}

// topN returns the n most frequent keys. Equal counts keep first-encounter order.
func topN(keys []string, n int) []keyCount {
	order, counts := countByKey(keys)
	ranked := make([]keyCount, len(order))
	for i, k := range order {
		ranked[i] = keyCount{key: k, count: counts[k]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// countInts counts values and returns the distinct values ascending.
func countInts(values []int) ([]int, map[int]int) {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys, counts
}

// modalKey returns the most frequent key; ties go to the smallest key.
func modalKey(counts map[int]int) (int, bool) {
	best, bestCount, found := 0, 0, false
	for k, c := range counts {
		if !found || c > bestCount || (c == bestCount && k < best) {
			best, bestCount, found = k, c, true
		}
	}
	return best, found
}

// equalWidthBins splits [min, max] into n bins of equal width. The last bin
// includes its upper edge.
func equalWidthBins(values []float64, n int) []models.HistogramBin {
	if len(values) == 0 || n < 1 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(n)
	bins := make([]models.HistogramBin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	bins[n-1].Max = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}

// edgeBins counts values into the bins delimited by ascending edges. Bins are
// half-open except the last; values outside the edges are ignored.
func edgeBins(values []float64, edges []float64) []models.HistogramBin {
	if len(edges) < 2 {
		return nil
	}
	bins := make([]models.HistogramBin, len(edges)-1)
	for i := range bins {
		bins[i].Min = edges[i]
		bins[i].Max = edges[i+1]
	}

	last := len(edges) - 1
	for _, v := range values {
		if v < edges[0] || v > edges[last] {
			continue
		}
		i := sort.SearchFloat64s(edges, v)
		switch {
		case i == last:
			i = last - 1
		case edges[i] != v:
			i--
		}
		bins[i].Count++
	}
	return bins
}

// rangeEdges returns lo, lo+step, ..., hi.
func rangeEdges(lo, hi, step float64) []float64 {
	var edges []float64
	for v := lo; v <= hi; v += step {
		edges = append(edges, v)
	}
	return edges
}

// gaussianKDE evaluates a Gaussian kernel density estimate with Scott's
// bandwidth on points evenly spaced over the data range, multiplied by scale.
func gaussianKDE(values []float64, points int, scale float64) []models.Point {
	n := len(values)
	if n < 2 || points < 2 {
		return nil
	}
	_, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}
	bw := std * math.Pow(float64(n), -0.2)

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	curve := make([]models.Point, points)
	step := (hi - lo) / float64(points-1)
	for i := range curve {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range values {
			sum += distuv.UnitNormal.Prob((x - v) / bw)
		}
		curve[i] = models.Point{X: x, Y: sum / (float64(n) * bw) * scale}
	}
	return curve
}

// summarize returns count, mean, std, min, quartiles and max of values.
func summarize(values []float64) []models.Stat {
	stats := []models.Stat{{Label: "count", Value: strconv.Itoa(len(values))}}
	labels := []string{"mean", "std", "min", "25%", "50%", "75%", "max"}
	if len(values) == 0 {
		for _, l := range labels {
			stats = append(stats, models.Stat{Label: l, Value: "n/a"})
		}
		return stats
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	std := math.NaN()
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}
	nums := []float64{
		mean,
		std,
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	}
	for i, v := range nums {
		stats = append(stats, models.Stat{Label: labels[i], Value: formatStat(v)})
	}
	return stats
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
