package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"bixi-eda/table"
	"bixi-eda/utils"
)

// timestampLayouts are tried in order when parsing trip timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// calendarPrefixes maps each timestamp column to its derived column prefix.
var calendarPrefixes = []struct {
	column string
	day    string
	wday   string
	hour   string
}{
	{table.ColStartDate, table.ColStartDay, table.ColStartWeekday, table.ColStartHour},
	{table.ColEndDate, table.ColEndDay, table.ColEndWeekday, table.ColEndHour},
}

// FeatureDeriver parses trip timestamps and adds calendar columns.
type FeatureDeriver struct {
	logger *utils.Logger
}

// NewFeatureDeriver creates a FeatureDeriver with the given logger.
func NewFeatureDeriver(logger *utils.Logger) *FeatureDeriver {
	return &FeatureDeriver{logger: logger}
}

// Derive runs ParseTimestamps, DeriveCalendarFields and DeriveIsWeekend.
func (f *FeatureDeriver) Derive(t *table.Table) (*table.Table, error) {
	parsed, err := f.ParseTimestamps(t)
	if err != nil {
		return nil, err
	}
	withCalendar, err := f.DeriveCalendarFields(parsed)
	if err != nil {
		return nil, err
	}
	return f.DeriveIsWeekend(withCalendar)
}

// ParseTimestamps converts start_date and end_date to timestamps. The first
// unparseable or missing value aborts with a parse error.
func (f *FeatureDeriver) ParseTimestamps(t *table.Table) (*table.Table, error) {
	out := t
	for _, name := range []string{table.ColStartDate, table.ColEndDate} {
		raw, err := out.Strings(name)
		if err != nil {
			return nil, err
		}
		col, err := out.Column(name)
		if err != nil {
			return nil, err
		}
		missing := col.IsNaN()

		ts := make([]time.Time, len(raw))
		for i, s := range raw {
			if missing[i] {
				return nil, fmt.Errorf("%w: column %q row %d: missing timestamp", table.ErrParse, name, i)
			}
			v, err := ParseTimestamp(s)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
			}
			ts[i] = v
		}

		out, err = out.WithTimes(name, ts)
		if err != nil {
			return nil, err
		}
	}
	f.logger.Debug("[features] Parsed timestamps for %d rows", out.Nrow())
	return out, nil
}

// ParseTimestamp parses a trip timestamp in any accepted layout.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", table.ErrParse, s)
}

// Weekday returns the weekday index of v, Monday=0 through Sunday=6.
func Weekday(v time.Time) int {
	return (int(v.Weekday()) + 6) % 7
}

// DeriveCalendarFields adds day-of-month, weekday and hour columns for the
// start and end timestamps.
func (f *FeatureDeriver) DeriveCalendarFields(t *table.Table) (*table.Table, error) {
	out := t
	for _, p := range calendarPrefixes {
		ts, err := out.Times(p.column)
		if err != nil {
			return nil, err
		}

		days := make([]int, len(ts))
		wdays := make([]int, len(ts))
		hours := make([]int, len(ts))
		for i, v := range ts {
			days[i] = v.Day()
			wdays[i] = Weekday(v)
			hours[i] = v.Hour()
		}

		for _, col := range []series.Series{
			series.New(days, series.Int, p.day),
			series.New(wdays, series.Int, p.wday),
			series.New(hours, series.Int, p.hour),
		} {
			out, err = out.WithColumn(col)
			if err != nil {
				return nil, err
			}
		}
	}
	f.logger.Debug("[features] Derived calendar fields for %d rows", out.Nrow())
	return out, nil
}

// DeriveIsWeekend adds is_weekend, true when Start_Weekday is 5 or 6.
func (f *FeatureDeriver) DeriveIsWeekend(t *table.Table) (*table.Table, error) {
	wdays, err := t.Ints(table.ColStartWeekday)
	if err != nil {
		return nil, err
	}

	weekend := make([]bool, len(wdays))
	for i, d := range wdays {
		weekend[i] = d >= 5
	}
	return t.WithColumn(series.New(weekend, series.Bool, table.ColIsWeekend))
}
