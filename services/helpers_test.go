package services

import (
	"io"
	"testing"

	"bixi-eda/table"
	"bixi-eda/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, "debug") }

var tripHeader = []string{
	"start_date", "end_date", "duration_sec", "start_station_code", "end_station_code", "is_member",
}

// sampleTrips spans a Saturday, a Sunday and two weekdays.
func sampleTrips() [][]string {
	return [][]string{
		tripHeader,
		{"2021-06-05 08:00", "2021-06-05 08:05", "300", "6001", "6002", "1"},
		{"2021-06-05 08:00", "2021-06-05 08:05", "300", "6001", "6002", "1"},
		{"2021-06-05 08:30", "2021-06-05 09:10", "2400", "6002", "6001", "0"},
		{"2021-06-06 14:15", "2021-06-06 14:40", "1500", "6003", "6001", "0"},
		{"2021-06-07 08:10", "2021-06-07 08:22", "720", "6001", "6003", "1"},
		{"2021-06-07 17:45", "2021-06-07 18:01", "960", "6002", "6003", "1"},
		{"2021-06-08 08:05", "", "480", "6001", "6002", "1"},
		{"2021-06-09 23:59", "2021-06-10 00:20", "1260", "6004", "6002", "0"},
	}
}

func mustTable(t *testing.T, records [][]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(records)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

func preparedTrips(t *testing.T, records [][]string) *table.Table {
	t.Helper()
	prepared, _, err := NewPipeline(newTestLogger()).Prepare(mustTable(t, records))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return prepared
}
