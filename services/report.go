package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"bixi-eda/table"
)

// ColumnCount pairs a column name with a count.
type ColumnCount struct {
	Column string
	Count  int
}

// MissingValues returns the number of missing entries per column, in
// column order.
func MissingValues(t *table.Table) []ColumnCount {
	infos := t.Columns()
	counts := make([]ColumnCount, len(infos))
	for i, info := range infos {
		counts[i] = ColumnCount{Column: info.Name, Count: info.Missing}
	}
	return counts
}

// ReportMissingValues writes the missing-value count of every column.
func ReportMissingValues(w io.Writer, t *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\n\nMissing Values:\n")
	for _, c := range MissingValues(t) {
		fmt.Fprintf(tw, "%s\t%d\n", c.Column, c.Count)
	}
	return tw.Flush()
}

// ReportSchema writes column names, dtypes and non-null counts.
func ReportSchema(w io.Writer, t *table.Table) error {
	infos := t.Columns()

	fmt.Fprintf(w, "\n\n Data Information:\n\n")
	fmt.Fprintf(w, "RangeIndex: %d entries\n", t.Nrow())
	fmt.Fprintf(w, "Data columns (total %d columns):\n", len(infos))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, " #\tColumn\tNon-Null Count\tDtype\n")
	fmt.Fprintf(tw, "---\t------\t--------------\t-----\n")
	tally := make(map[string]int)
	for i, info := range infos {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\n", i, info.Name, info.NonNull, info.Type)
		tally[info.Type]++
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	types := make([]string, 0, len(tally))
	for typ := range tally {
		types = append(types, typ)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, typ := range types {
		parts[i] = fmt.Sprintf("%s(%d)", typ, tally[typ])
	}
	_, err := fmt.Fprintf(w, "dtypes: %s\n", strings.Join(parts, ", "))
	return err
}
