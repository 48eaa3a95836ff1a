package services

import (
	"errors"
	"testing"
	"time"

	"bixi-eda/table"
)

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2021-06-05 08:00:30", time.Date(2021, 6, 5, 8, 0, 30, 0, time.UTC)},
		{"2021-06-05 08:00", time.Date(2021, 6, 5, 8, 0, 0, 0, time.UTC)},
		{"2021-06-05T08:00:30", time.Date(2021, 6, 5, 8, 0, 30, 0, time.UTC)},
		{"2021-06-05T08:00:30Z", time.Date(2021, 6, 5, 8, 0, 30, 0, time.UTC)},
		{" 2021-06-05 ", time.Date(2021, 6, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.raw)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseTimestampsRejectsGarbage(t *testing.T) {
	f := NewFeatureDeriver(newTestLogger())
	tbl := mustTable(t, [][]string{
		{"start_date", "end_date"},
		{"2021-06-05 08:00", "yesterday"},
	})

	_, err := f.ParseTimestamps(tbl)
	if !errors.Is(err, table.ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestParseTimestampsRejectsMissing(t *testing.T) {
	f := NewFeatureDeriver(newTestLogger())
	tbl := mustTable(t, [][]string{
		{"start_date", "end_date"},
		{"2021-06-05 08:00", ""},
	})

	_, err := f.ParseTimestamps(tbl)
	if !errors.Is(err, table.ErrParse) {
		t.Errorf("expected parse error for a missing timestamp, got %v", err)
	}
}

func TestSaturdayIsWeekend(t *testing.T) {
	f := NewFeatureDeriver(newTestLogger())
	tbl := mustTable(t, [][]string{
		{"start_date", "end_date"},
		{"2021-06-05", "2021-06-05"},
	})

	derived, err := f.Derive(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wdays, _ := derived.Ints(table.ColStartWeekday)
	weekend, _ := derived.Flags(table.ColIsWeekend)
	if wdays[0] != 5 {
		t.Errorf("Start_Weekday: got %d, want 5", wdays[0])
	}
	if !weekend[0] {
		t.Errorf("is_weekend: got false, want true")
	}
}

func TestCalendarFieldsMatchTimestamps(t *testing.T) {
	prepared := preparedTrips(t, sampleTrips())

	starts, err := prepared.Times(table.ColStartDate)
	if err != nil {
		t.Fatalf("start times: %v", err)
	}
	ends, err := prepared.Times(table.ColEndDate)
	if err != nil {
		t.Fatalf("end times: %v", err)
	}

	cols := map[string][]int{}
	for _, name := range []string{
		table.ColStartDay, table.ColStartWeekday, table.ColStartHour,
		table.ColEndDay, table.ColEndWeekday, table.ColEndHour,
	} {
		vals, err := prepared.Ints(name)
		if err != nil {
			t.Fatalf("column %s: %v", name, err)
		}
		cols[name] = vals
	}
	weekend, err := prepared.Flags(table.ColIsWeekend)
	if err != nil {
		t.Fatalf("is_weekend: %v", err)
	}

	for i := range starts {
		if cols[table.ColStartHour][i] < 0 || cols[table.ColStartHour][i] > 23 {
			t.Errorf("row %d: Start_Hour %d out of range", i, cols[table.ColStartHour][i])
		}
		if cols[table.ColStartWeekday][i] < 0 || cols[table.ColStartWeekday][i] > 6 {
			t.Errorf("row %d: Start_Weekday %d out of range", i, cols[table.ColStartWeekday][i])
		}
		if cols[table.ColStartDay][i] != starts[i].Day() || cols[table.ColStartHour][i] != starts[i].Hour() {
			t.Errorf("row %d: start fields do not match %v", i, starts[i])
		}
		if cols[table.ColEndDay][i] != ends[i].Day() || cols[table.ColEndHour][i] != ends[i].Hour() ||
			cols[table.ColEndWeekday][i] != Weekday(ends[i]) {
			t.Errorf("row %d: end fields do not match %v", i, ends[i])
		}
		wantWeekend := cols[table.ColStartWeekday][i] == 5 || cols[table.ColStartWeekday][i] == 6
		if weekend[i] != wantWeekend {
			t.Errorf("row %d: is_weekend %v, Start_Weekday %d", i, weekend[i], cols[table.ColStartWeekday][i])
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{time.Date(2021, 6, 7, 0, 0, 0, 0, time.UTC), 0},  // Monday
		{time.Date(2021, 6, 11, 0, 0, 0, 0, time.UTC), 4}, // Friday
		{time.Date(2021, 6, 13, 0, 0, 0, 0, time.UTC), 6}, // Sunday
	}
	for _, tt := range tests {
		if got := Weekday(tt.day); got != tt.want {
			t.Errorf("Weekday(%s) = %d; want %d", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestDeriveIsWeekendRequiresWeekday(t *testing.T) {
	f := NewFeatureDeriver(newTestLogger())
	tbl := mustTable(t, [][]string{{"start_date"}, {"2021-06-05"}})

	_, err := f.DeriveIsWeekend(tbl)
	if !errors.Is(err, table.ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
}

func TestPipelineStageCounts(t *testing.T) {
	_, stages, err := NewPipeline(newTestLogger()).Prepare(mustTable(t, sampleTrips()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{8, 7, 6, 6}
	if len(stages) != len(want) {
		t.Fatalf("stages: got %d, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s.Rows != want[i] {
			t.Errorf("stage %s: got %d rows, want %d", s.Stage, s.Rows, want[i])
		}
	}
}
