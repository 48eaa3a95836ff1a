package charts

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bixi-eda/models"
	"bixi-eda/utils"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(t.TempDir(), 4, 3, 2, utils.NewLoggerTo(io.Discard, "info"))
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", path)
}

func sampleReport() *models.InsightReport {
	return &models.InsightReport{
		Rows: 3,
		Analyses: []*models.Analysis{
			{
				Name: "member_distribution",
				Charts: []models.Chart{&models.BarChart{
					Name: "member_distribution", Title: "Members",
					Labels: []string{"0", "1"}, Values: []float64{1, 2},
				}},
			},
			{
				Name: "top_stations",
				Charts: []models.Chart{&models.BarChart{
					Name: "top_start_stations", Title: "Top",
					Labels: []string{"6001", "6002"}, Values: []float64{2, 1}, Horizontal: true,
				}},
			},
			{
				Name: "duration_by_user_type",
				Charts: []models.Chart{&models.Histogram{
					Name: "duration_by_user_type", Title: "Durations",
					Layers: []models.HistogramLayer{
						{Label: "Member", Bins: []models.HistogramBin{{Min: 0, Max: 4, Count: 2}, {Min: 4, Max: 8, Count: 1}}},
						{Label: "Non-Member", Bins: []models.HistogramBin{{Min: 0, Max: 4, Count: 0}, {Min: 4, Max: 8, Count: 3}}},
					},
					Density: []models.Point{{X: 0, Y: 1}, {X: 4, Y: 2}, {X: 8, Y: 1}},
				}},
			},
			{
				Name: "daily_trend",
				Charts: []models.Chart{&models.LineChart{
					Name: "daily_trend", Title: "Daily", TimeAxis: true,
					Series: []models.LineSeries{{Label: "trips", Points: []models.Point{
						{X: 1622851200, Y: 2}, {X: 1622937600, Y: 1},
					}}},
				}},
			},
			{
				Name: "weekly_duration_by_membership",
				Charts: []models.Chart{&models.LineChart{
					Name: "weekly_duration_by_membership", Title: "Weekly",
					XLabels: []string{"Monday", "Tuesday", "Wednesday"},
					Series: []models.LineSeries{
						{Label: "Member", Points: []models.Point{{X: 0, Y: 300}, {X: 2, Y: 600}}},
						{Label: "Non-Member", Points: []models.Point{{X: 1, Y: 900}}},
					},
				}},
			},
		},
	}
}

func TestRenderAllWritesEveryChart(t *testing.T) {
	r := newRenderer(t)

	paths, err := r.RenderAll(sampleReport())
	require.NoError(t, err)
	require.Len(t, paths, 5)

	want := []string{
		"member_distribution.png",
		"top_start_stations.png",
		"duration_by_user_type.png",
		"daily_trend.png",
		"weekly_duration_by_membership.png",
	}
	for i, path := range paths {
		assert.Equal(t, want[i], filepath.Base(path))
		assertPNG(t, path)
	}
}

func TestRenderEmptyCharts(t *testing.T) {
	r := newRenderer(t)

	empty := []models.Chart{
		&models.BarChart{Name: "empty_bar", Title: "No trips"},
		&models.Histogram{Name: "empty_hist", Title: "No trips", Layers: []models.HistogramLayer{{Label: "duration_sec"}}},
		&models.LineChart{Name: "empty_line", Title: "No trips", XLabels: []string{"Monday"}, Series: []models.LineSeries{{Label: "Member"}}},
		&models.LineChart{Name: "empty_trend", Title: "No trips", TimeAxis: true, Series: []models.LineSeries{{Label: "trips"}}},
	}
	for _, c := range empty {
		path, err := r.Render(c)
		require.NoError(t, err, c.ChartName())
		assertPNG(t, path)
	}
}

type unknownChart struct{}

func (unknownChart) ChartName() string  { return "unknown" }
func (unknownChart) ChartTitle() string { return "Unknown" }
func (unknownChart) Table() [][]string  { return nil }

func TestRenderUnsupportedChart(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render(unknownChart{})
	assert.ErrorContains(t, err, "unsupported chart type")
}
