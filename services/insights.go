package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"bixi-eda/models"
	"bixi-eda/table"
	"bixi-eda/utils"
)

const (
	durationBins     = 50
	kdePoints        = 200
	topStationsCount = 10
	dateLayout       = "2006-01-02"
)

// weekdayLabels are indexed by the Monday=0 weekday index.
var weekdayLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// userTypeEdges bins trip minutes as 0, 4, ..., 96.
var userTypeEdges = rangeEdges(0, 96, 4)

// InsightService computes the analysis catalog over a prepared trip table.
// Analyses never modify the table.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate runs every analysis in catalog order. The first failure aborts.
func (s *InsightService) Generate(t *table.Table) (*models.InsightReport, error) {
	catalog := []func(*table.Table) (*models.Analysis, error){
		func(t *table.Table) (*models.Analysis, error) { return s.MembershipDistribution(t, table.ColIsMember) },
		func(t *table.Table) (*models.Analysis, error) { return s.DurationDistribution(t, table.ColDurationSec) },
		s.HourlyPatternByWeekend,
		s.PeakHours,
		s.DailyTrend,
		s.TopStations,
		s.DurationByUserType,
		s.WeeklyTripCounts,
		s.WeeklyDurationByMembership,
		s.DurationSummary,
	}

	report := &models.InsightReport{Rows: t.Nrow()}
	for _, analyse := range catalog {
		a, err := analyse(t)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("[insights] %s: %d charts, %d stats", a.Name, len(a.Charts), len(a.Stats))
		report.Analyses = append(report.Analyses, a)
	}

	s.logger.Info("[insights] Computed %d analyses over %d trips", len(report.Analyses), t.Nrow())
	return report, nil
}

// MembershipDistribution counts rides per value of the membership column.
func (s *InsightService) MembershipDistribution(t *table.Table, col string) (*models.Analysis, error) {
	keys, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	order, counts := countByKey(keys)
	sortCategories(order)

	chart := &models.BarChart{
		Name:   "member_distribution",
		Title:  "Distribution of Member and Non-Member Rides",
		XLabel: col,
		YLabel: "count",
	}
	a := &models.Analysis{Name: "member_distribution", Title: chart.Title, Charts: []models.Chart{chart}}
	for _, k := range order {
		chart.Labels = append(chart.Labels, k)
		chart.Values = append(chart.Values, float64(counts[k]))
		a.Stats = append(a.Stats, models.Stat{Label: col + "=" + k, Value: strconv.Itoa(counts[k])})
	}
	return a, nil
}

// DurationDistribution bins ride durations into 50 bins with a density overlay.
func (s *InsightService) DurationDistribution(t *table.Table, col string) (*models.Analysis, error) {
	durations, err := t.Floats(col)
	if err != nil {
		return nil, err
	}

	bins := equalWidthBins(durations, durationBins)
	chart := &models.Histogram{
		Name:   "duration_distribution",
		Title:  "Distribution of Ride Durations",
		XLabel: "Duration (seconds)",
		YLabel: "Frequency",
		Layers: []models.HistogramLayer{{Label: col, Bins: bins}},
	}
	if len(bins) > 0 {
		width := bins[0].Max - bins[0].Min
		chart.Density = gaussianKDE(durations, kdePoints, float64(len(durations))*width)
	}

	return &models.Analysis{
		Name:   "duration_distribution",
		Title:  chart.Title,
		Charts: []models.Chart{chart},
		Stats:  []models.Stat{{Label: "trips", Value: strconv.Itoa(len(durations))}},
	}, nil
}

// HourlyPatternByWeekend counts trips per start hour, separately for weekdays
// and weekends.
func (s *InsightService) HourlyPatternByWeekend(t *table.Table) (*models.Analysis, error) {
	hours, err := t.Ints(table.ColStartHour)
	if err != nil {
		return nil, err
	}
	weekend, err := t.Flags(table.ColIsWeekend)
	if err != nil {
		return nil, err
	}

	var weekdayHours, weekendHours []int
	for i, h := range hours {
		if weekend[i] {
			weekendHours = append(weekendHours, h)
		} else {
			weekdayHours = append(weekdayHours, h)
		}
	}

	return &models.Analysis{
		Name:  "hourly_pattern",
		Title: "Hourly Trip Pattern by Weekday and Weekend",
		Charts: []models.Chart{
			hourBarChart("hourly_weekday", "Hourly Trip Pattern on Weekdays", weekdayHours),
			hourBarChart("hourly_weekend", "Hourly Trip Pattern on Weekends", weekendHours),
		},
		Stats: []models.Stat{
			{Label: "weekday trips", Value: strconv.Itoa(len(weekdayHours))},
			{Label: "weekend trips", Value: strconv.Itoa(len(weekendHours))},
		},
	}, nil
}

func hourBarChart(name, title string, hours []int) *models.BarChart {
	keys, counts := countInts(hours)
	chart := &models.BarChart{Name: name, Title: title, XLabel: table.ColStartHour, YLabel: "count"}
	for _, h := range keys {
		chart.Labels = append(chart.Labels, strconv.Itoa(h))
		chart.Values = append(chart.Values, float64(counts[h]))
	}
	return chart
}

// PeakHours counts trips per start hour and reports the modal hour.
func (s *InsightService) PeakHours(t *table.Table) (*models.Analysis, error) {
	hours, err := t.Ints(table.ColStartHour)
	if err != nil {
		return nil, err
	}
	keys, counts := countInts(hours)

	series := models.LineSeries{Label: "trips"}
	for _, h := range keys {
		series.Points = append(series.Points, models.Point{X: float64(h), Y: float64(counts[h])})
	}
	chart := &models.LineChart{
		Name:   "peak_hours",
		Title:  "Trips by Hour of Day",
		XLabel: "Hour of Day",
		YLabel: "Number of Trips",
		Series: []models.LineSeries{series},
	}

	peak := models.Stat{Label: "Peak hour", Value: "n/a"}
	peakTrips := models.Stat{Label: "Trips in peak hour", Value: "0"}
	if h, ok := modalKey(counts); ok {
		peak.Value = strconv.Itoa(h)
		peakTrips.Value = strconv.Itoa(counts[h])
	}

	return &models.Analysis{
		Name:   "peak_hours",
		Title:  chart.Title,
		Charts: []models.Chart{chart},
		Stats:  []models.Stat{peak, peakTrips},
	}, nil
}

// DailyTrend counts trips per calendar date of start_date.
func (s *InsightService) DailyTrend(t *table.Table) (*models.Analysis, error) {
	starts, err := t.Times(table.ColStartDate)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, ts := range starts {
		counts[ts.Format(dateLayout)]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)

	series := models.LineSeries{Label: "trips"}
	busiest, busiestCount := "n/a", 0
	for _, d := range days {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("daily trend: %w", err)
		}
		series.Points = append(series.Points, models.Point{X: float64(day.Unix()), Y: float64(counts[d])})
		if counts[d] > busiestCount {
			busiest, busiestCount = d, counts[d]
		}
	}

	chart := &models.LineChart{
		Name:     "daily_trend",
		Title:    "Daily Trip Count",
		XLabel:   "Date",
		YLabel:   "Number of Trips",
		TimeAxis: true,
		Series:   []models.LineSeries{series},
	}
	return &models.Analysis{
		Name:   "daily_trend",
		Title:  chart.Title,
		Charts: []models.Chart{chart},
		Stats: []models.Stat{
			{Label: "days", Value: strconv.Itoa(len(days))},
			{Label: "busiest day", Value: busiest},
		},
	}, nil
}

// TopStations ranks the ten most frequent start and end stations.
func (s *InsightService) TopStations(t *table.Table) (*models.Analysis, error) {
	starts, err := t.Strings(table.ColStartStationCode)
	if err != nil {
		return nil, err
	}
	ends, err := t.Strings(table.ColEndStationCode)
	if err != nil {
		return nil, err
	}

	return &models.Analysis{
		Name:  "top_stations",
		Title: "Most Popular Stations",
		Charts: []models.Chart{
			stationChart("top_start_stations", "Top 10 Start Stations", starts),
			stationChart("top_end_stations", "Top 10 End Stations", ends),
		},
	}, nil
}

func stationChart(name, title string, codes []string) *models.BarChart {
	chart := &models.BarChart{
		Name:       name,
		Title:      title,
		XLabel:     "Number of Trips",
		YLabel:     "Station Code",
		Horizontal: true,
	}
	for _, kc := range topN(codes, topStationsCount) {
		chart.Labels = append(chart.Labels, kc.key)
		chart.Values = append(chart.Values, float64(kc.count))
	}
	return chart
}

// DurationByUserType bins trip minutes for members and non-members over
// fixed 4-minute bins up to 96 minutes.
func (s *InsightService) DurationByUserType(t *table.Table) (*models.Analysis, error) {
	durations, err := t.Floats(table.ColDurationSec)
	if err != nil {
		return nil, err
	}
	member, err := t.Flags(table.ColIsMember)
	if err != nil {
		return nil, err
	}

	var members, others []float64
	for i, d := range durations {
		if member[i] {
			members = append(members, d/60)
		} else {
			others = append(others, d/60)
		}
	}

	chart := &models.Histogram{
		Name:   "duration_by_user_type",
		Title:  "Trip Duration by User Type",
		XLabel: "Duration (minutes)",
		YLabel: "Number of Trips",
		Layers: []models.HistogramLayer{
			{Label: "Member", Bins: edgeBins(members, userTypeEdges)},
			{Label: "Non-Member", Bins: edgeBins(others, userTypeEdges)},
		},
	}
	return &models.Analysis{
		Name:   "duration_by_user_type",
		Title:  chart.Title,
		Charts: []models.Chart{chart},
		Stats: []models.Stat{
			{Label: "member trips", Value: strconv.Itoa(len(members))},
			{Label: "non-member trips", Value: strconv.Itoa(len(others))},
		},
	}, nil
}

// WeeklyTripCounts counts trips per start weekday, Monday through Sunday.
func (s *InsightService) WeeklyTripCounts(t *table.Table) (*models.Analysis, error) {
	wdays, err := t.Ints(table.ColStartWeekday)
	if err != nil {
		return nil, err
	}

	counts := make([]float64, len(weekdayLabels))
	for i, d := range wdays {
		if d < 0 || d >= len(weekdayLabels) {
			return nil, fmt.Errorf("%w: column %q row %d: weekday %d out of range", table.ErrParse, table.ColStartWeekday, i, d)
		}
		counts[d]++
	}

	labels := make([]string, len(weekdayLabels))
	copy(labels, weekdayLabels)
	chart := &models.BarChart{
		Name:   "weekly_trip_counts",
		Title:  "Weekly Trip Counts",
		XLabel: "Weekday",
		YLabel: "Number of Trips",
		Labels: labels,
		Values: counts,
	}
	return &models.Analysis{Name: "weekly_trip_counts", Title: chart.Title, Charts: []models.Chart{chart}}, nil
}

// WeeklyDurationByMembership averages trip duration per start weekday for
// members and non-members.
func (s *InsightService) WeeklyDurationByMembership(t *table.Table) (*models.Analysis, error) {
	durations, err := t.Floats(table.ColDurationSec)
	if err != nil {
		return nil, err
	}
	wdays, err := t.Ints(table.ColStartWeekday)
	if err != nil {
		return nil, err
	}
	member, err := t.Flags(table.ColIsMember)
	if err != nil {
		return nil, err
	}

	var byMember, byOther [7][]float64
	for i, d := range wdays {
		if d < 0 || d >= len(weekdayLabels) {
			return nil, fmt.Errorf("%w: column %q row %d: weekday %d out of range", table.ErrParse, table.ColStartWeekday, i, d)
		}
		if member[i] {
			byMember[d] = append(byMember[d], durations[i])
		} else {
			byOther[d] = append(byOther[d], durations[i])
		}
	}

	chart := &models.LineChart{
		Name:    "weekly_duration_by_membership",
		Title:   "Average Trip Duration by Weekday",
		XLabel:  "Weekday",
		YLabel:  "Mean Duration (seconds)",
		XLabels: append([]string(nil), weekdayLabels...),
		Series: []models.LineSeries{
			weekdayMeans("Member", byMember),
			weekdayMeans("Non-Member", byOther),
		},
	}
	return &models.Analysis{Name: "weekly_duration_by_membership", Title: chart.Title, Charts: []models.Chart{chart}}, nil
}

func weekdayMeans(label string, groups [7][]float64) models.LineSeries {
	series := models.LineSeries{Label: label}
	for d, values := range groups {
		if len(values) == 0 {
			continue
		}
		series.Points = append(series.Points, models.Point{X: float64(d), Y: stat.Mean(values, nil)})
	}
	return series
}

// DurationSummary reports descriptive statistics of duration_sec.
func (s *InsightService) DurationSummary(t *table.Table) (*models.Analysis, error) {
	durations, err := t.Floats(table.ColDurationSec)
	if err != nil {
		return nil, err
	}
	return &models.Analysis{
		Name:  "duration_summary",
		Title: "Trip Duration Summary (seconds)",
		Stats: summarize(durations),
	}, nil
}
