package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source columns of a trip export.
const (
	ColStartDate        = "start_date"
	ColEndDate          = "end_date"
	ColDurationSec      = "duration_sec"
	ColStartStationCode = "start_station_code"
	ColEndStationCode   = "end_station_code"
	ColIsMember         = "is_member"
)

// Derived calendar columns.
const (
	ColStartDay     = "Start_Day"
	ColStartWeekday = "Start_Weekday"
	ColStartHour    = "Start_Hour"
	ColEndDay       = "End_Day"
	ColEndWeekday   = "End_Weekday"
	ColEndHour      = "End_Hour"
	ColIsWeekend    = "is_weekend"
)

// TimestampLayout is the text form parsed timestamp columns are normalised to.
const TimestampLayout = "2006-01-02 15:04:05"

// DatetimeType is the dtype reported for parsed timestamp columns.
const DatetimeType = "datetime"

// RequiredColumns must be present in every loaded trip file.
var RequiredColumns = []string{
	ColStartDate,
	ColEndDate,
	ColDurationSec,
	ColStartStationCode,
	ColEndStationCode,
	ColIsMember,
}

// Table is the in-memory trip table. Transformations never modify the
// receiver; they return a new Table.
type Table struct {
	df    dataframe.DataFrame
	times map[string][]time.Time
}

// ColumnInfo describes one column of the table.
type ColumnInfo struct {
	Name    string
	Type    string
	NonNull int
	Missing int
}

func newTable(df dataframe.DataFrame, times map[string][]time.Time) *Table {
	if times == nil {
		times = make(map[string][]time.Time)
	}
	return &Table{df: df, times: times}
}

// Nrow returns the number of rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns.
func (t *Table) Ncol() int { return t.df.Ncol() }

// Names returns the column names in table order.
func (t *Table) Names() []string { return t.df.Names() }

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Require returns a precondition error naming the first absent column.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return MissingColumn(name)
		}
	}
	return nil
}

// Column returns the raw series backing a column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, MissingColumn(name)
	}
	return t.df.Col(name), nil
}

// Rows returns every row as text, without the header. Cells are rendered
// like Strings renders them.
func (t *Table) Rows() [][]string {
	n := t.df.Nrow()
	if n == 0 {
		return nil
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, t.df.Ncol())
	}
	for j, name := range t.df.Names() {
		col := t.df.Col(name)
		for i := 0; i < n; i++ {
			rows[i][j] = cellText(col.Elem(i), col.Type())
		}
	}
	return rows
}

// Columns returns name, dtype and null counts for every column.
func (t *Table) Columns() []ColumnInfo {
	names := t.df.Names()
	infos := make([]ColumnInfo, 0, len(names))
	for _, name := range names {
		col := t.df.Col(name)
		missing := 0
		for _, na := range col.IsNaN() {
			if na {
				missing++
			}
		}
		typ := string(col.Type())
		if _, ok := t.times[name]; ok {
			typ = DatetimeType
		}
		infos = append(infos, ColumnInfo{
			Name:    name,
			Type:    typ,
			NonNull: col.Len() - missing,
			Missing: missing,
		})
	}
	return infos
}

// Strings returns a column as text. Missing values read as "NaN" and floats
// use the shortest form that round-trips.
func (t *Table) Strings(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, col.Len())
	for i := range out {
		out[i] = cellText(col.Elem(i), col.Type())
	}
	return out, nil
}

func cellText(e series.Element, typ series.Type) string {
	if typ == series.Float && !e.IsNA() {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}

// Ints returns a column as integers.
func (t *Table) Ints(name string) ([]int, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, parseError(name, i, "", errMissingValue)
		}
		v, err := e.Int()
		if err != nil {
			return nil, parseError(name, i, e.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

// Floats returns a numeric column as float64 values.
func (t *Table) Floats(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, parseError(name, i, "", errMissingValue)
		}
		if col.Type() == series.String {
			v, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
			if err != nil {
				return nil, parseError(name, i, e.String(), err)
			}
			out[i] = v
			continue
		}
		out[i] = e.Float()
	}
	return out, nil
}

// Flags returns a 0/1 or true/false column as booleans.
func (t *Table) Flags(name string) ([]bool, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, parseError(name, i, "", errMissingValue)
		}
		switch col.Type() {
		case series.Bool:
			v, err := e.Bool()
			if err != nil {
				return nil, parseError(name, i, e.String(), err)
			}
			out[i] = v
		case series.Int, series.Float:
			out[i] = e.Float() != 0
		default:
			v, err := strconv.ParseBool(strings.TrimSpace(e.String()))
			if err != nil {
				return nil, parseError(name, i, e.String(), err)
			}
			out[i] = v
		}
	}
	return out, nil
}

// Times returns a parsed timestamp column.
func (t *Table) Times(name string) ([]time.Time, error) {
	ts, ok := t.times[name]
	if !ok {
		if !t.HasColumn(name) {
			return nil, MissingColumn(name)
		}
		return nil, fmt.Errorf("%w: column %q has not been parsed as timestamps", ErrPrecondition, name)
	}
	out := make([]time.Time, len(ts))
	copy(out, ts)
	return out, nil
}

// IsTimestamp reports whether a column holds parsed timestamps.
func (t *Table) IsTimestamp(name string) bool {
	_, ok := t.times[name]
	return ok
}

// Subset returns the rows at idx, in that order.
func (t *Table) Subset(idx []int) (*Table, error) {
	var df dataframe.DataFrame
	if len(idx) == 0 {
		df = emptyLike(t.df)
	} else {
		df = t.df.Subset(idx)
	}
	if df.Err != nil {
		return nil, fmt.Errorf("subset rows: %w", df.Err)
	}

	times := make(map[string][]time.Time, len(t.times))
	for name, ts := range t.times {
		sub := make([]time.Time, len(idx))
		for j, i := range idx {
			sub[j] = ts[i]
		}
		times[name] = sub
	}
	return newTable(df, times), nil
}

// WithColumn adds s as a column, replacing any column with the same name.
func (t *Table) WithColumn(s series.Series) (*Table, error) {
	if s.Err != nil {
		return nil, fmt.Errorf("column %q: %w", s.Name, s.Err)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return nil, fmt.Errorf("add column %q: %w", s.Name, df.Err)
	}

	times := make(map[string][]time.Time, len(t.times))
	for name, ts := range t.times {
		if name != s.Name {
			times[name] = ts
		}
	}
	return newTable(df, times), nil
}

// WithTimes stores ts as the parsed form of column name. The text column is
// rewritten in TimestampLayout.
func (t *Table) WithTimes(name string, ts []time.Time) (*Table, error) {
	if len(ts) != t.Nrow() {
		return nil, fmt.Errorf("timestamps for %q: got %d values, table has %d rows", name, len(ts), t.Nrow())
	}
	text := make([]string, len(ts))
	for i, v := range ts {
		text[i] = v.Format(TimestampLayout)
	}

	next, err := t.WithColumn(series.New(text, series.String, name))
	if err != nil {
		return nil, err
	}
	parsed := make([]time.Time, len(ts))
	copy(parsed, ts)
	next.times[name] = parsed
	return next, nil
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	types := df.Types()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = emptySeries(name, types[i])
	}
	return dataframe.New(cols...)
}

func emptySeries(name string, typ series.Type) series.Series {
	switch typ {
	case series.Int:
		return series.New([]int{}, series.Int, name)
	case series.Float:
		return series.New([]float64{}, series.Float, name)
	case series.Bool:
		return series.New([]bool{}, series.Bool, name)
	default:
		return series.New([]string{}, series.String, name)
	}
}
