package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bixi-eda/models"
)

func sampleReport() *models.InsightReport {
	return &models.InsightReport{
		Rows: 4,
		Analyses: []*models.Analysis{
			{
				Name:  "member_distribution",
				Title: "Members",
				Charts: []models.Chart{&models.BarChart{
					Name: "member_distribution", YLabel: "count",
					Labels: []string{"0", "1"}, Values: []float64{1, 3},
				}},
				Stats: []models.Stat{{Label: "is_member=0", Value: "1"}, {Label: "is_member=1", Value: "3"}},
			},
			{
				Name: "duration_by_user_type",
				Charts: []models.Chart{&models.Histogram{
					Name: "duration_by_user_type",
					Layers: []models.HistogramLayer{
						{Label: "Member", Bins: []models.HistogramBin{{Min: 0, Max: 4, Count: 2}}},
					},
				}},
			},
			{
				Name: "weekly_duration_by_membership",
				Charts: []models.Chart{&models.LineChart{
					Name:    "weekly_duration_by_membership",
					XLabels: []string{"Monday", "Tuesday"},
					Series:  []models.LineSeries{{Label: "Member", Points: []models.Point{{X: 1, Y: 450.5}}}},
				}},
			},
			{
				Name:  "peak_hours",
				Stats: []models.Stat{{Label: "Peak hour", Value: "n/a"}},
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFlattenOrderAndShape(t *testing.T) {
	got := Flatten(sampleReport())

	want := []Result{
		{Analysis: "member_distribution", Chart: "member_distribution", Series: "count", Label: "0", Value: "1"},
		{Analysis: "member_distribution", Chart: "member_distribution", Series: "count", Label: "1", Value: "3"},
		{Analysis: "member_distribution", Series: "stats", Label: "is_member=0", Value: "1"},
		{Analysis: "member_distribution", Series: "stats", Label: "is_member=1", Value: "3"},
		{Analysis: "duration_by_user_type", Chart: "duration_by_user_type", Series: "Member", Label: "[0, 4)", Value: "2"},
		{Analysis: "weekly_duration_by_membership", Chart: "weekly_duration_by_membership", Series: "Member", Label: "Tuesday", Value: "450.5"},
		{Analysis: "peak_hours", Series: "stats", Label: "Peak hour", Value: "n/a"},
	}
	assert.Equal(t, want, got)
}

func TestInsertBatchPlaceholders(t *testing.T) {
	query, args := insertBatch(Flatten(sampleReport())[:2])

	assert.True(t, strings.HasSuffix(query, "VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)"), query)
	assert.Len(t, args, 10)
	assert.Equal(t, "member_distribution", args[0])
	assert.Equal(t, "3", args[9])
}

func TestCSVWriterWritesTablesAndStats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")
	w, err := NewCSVWriter(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(sampleReport()))

	files := w.Files()
	require.Len(t, files, 4)
	assert.Equal(t, filepath.Join(dir, "stats.csv"), files[3])

	assert.Equal(t, [][]string{{"label", "value"}, {"0", "1"}, {"1", "3"}},
		readCSV(t, filepath.Join(dir, "member_distribution.csv")))
	assert.Equal(t, [][]string{{"series", "x", "y"}, {"Member", "Tuesday", "450.5"}},
		readCSV(t, filepath.Join(dir, "weekly_duration_by_membership.csv")))

	stats := readCSV(t, filepath.Join(dir, "stats.csv"))
	require.Len(t, stats, 4)
	assert.Equal(t, []string{"peak_hours", "Peak hour", "n/a"}, stats[3])
}

func TestXLSXWriterSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analysis.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleReport()))
	assert.Equal(t, []string{path}, w.Files())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"stats", "member_distribution", "duration_by_user_type", "weekly_duration_by_membership",
	}, f.GetSheetList())

	rows, err := f.GetRows("member_distribution")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"label", "value"}, {"0", "1"}, {"1", "3"}}, rows)

	stats, err := f.GetRows("stats")
	require.NoError(t, err)
	assert.Equal(t, []string{"peak_hours", "Peak hour", "n/a"}, stats[3])
}

func TestSheetNameTruncates(t *testing.T) {
	assert.Equal(t, "short", sheetName("short"))
	assert.Len(t, sheetName(strings.Repeat("x", 40)), 31)
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	m := &models.RunManifest{
		Input:       "trips.csv",
		GeneratedAt: time.Date(2021, 6, 7, 8, 0, 0, 0, time.UTC),
		Stages:      []models.StageCount{{Stage: "loaded", Rows: 8}, {Stage: "derive_features", Rows: 6}},
		Analyses:    []string{"member_distribution"},
		Charts:      []string{"charts/member_distribution.png"},
	}
	require.NoError(t, WriteManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stage: derive_features")
	assert.NotContains(t, string(data), "workbook")

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Stages, got.Stages)
	assert.Equal(t, m.Charts, got.Charts)
	assert.True(t, m.GeneratedAt.Equal(got.GeneratedAt))
}
