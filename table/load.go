package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingMarkers are the cell values read as missing.
var missingMarkers = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

// Load reads a delimited trip file and checks the required columns are present.
func Load(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads delimited trip records from r. A zero delimiter means comma.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", ErrIO, err)
	}

	t, err := FromRecords(records)
	if err != nil {
		return nil, err
	}
	if err := t.Require(RequiredColumns...); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRecords builds a table from a header row followed by data rows.
// Column types are detected from the data; a header-only input yields an
// empty table of text columns.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrIO)
	}
	header := make([]string, len(records[0]))
	copy(header, records[0])
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: header column %d has no name", ErrIO, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate header column %q", ErrIO, name)
		}
		seen[name] = struct{}{}
		header[i] = name
	}

	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			cols[i] = emptySeries(name, series.String)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, df.Err)
		}
		return newTable(df, nil), nil
	}

	for i, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrIO, i, len(row), len(header))
		}
	}

	withHeader := make([][]string, len(records))
	withHeader[0] = header
	copy(withHeader[1:], records[1:])
	df := dataframe.LoadRecords(withHeader,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, df.Err)
	}
	return newTable(df, nil), nil
}
