package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"bixi-eda/models"
)

const (
	statsSheet   = "stats"
	maxSheetName = 31
)

// XLSXWriter writes a workbook with a statistics sheet followed by one sheet
// per chart.
type XLSXWriter struct {
	path string
}

func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path}, nil
}

// Write builds the workbook and saves it, replacing any previous file.
func (x *XLSXWriter) Write(report *models.InsightReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statsSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	stats := [][]string{{"analysis", "label", "value"}}
	for _, a := range report.Analyses {
		for _, st := range a.Stats {
			stats = append(stats, []string{a.Name, st.Label, st.Value})
		}
	}
	if err := writeSheet(f, statsSheet, stats); err != nil {
		return err
	}

	for _, c := range report.Charts() {
		name := sheetName(c.ChartName())
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, c.Table()); err != nil {
			return err
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

func (x *XLSXWriter) Files() []string { return []string{x.path} }

func (x *XLSXWriter) Close() error { return nil }

// writeSheet stores numeric-looking cells as numbers so the workbook can be
// charted directly.
func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
			var v interface{} = val
			if rowIdx > 0 {
				if n, err := strconv.ParseFloat(val, 64); err == nil {
					v = n
				}
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx: set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func sheetName(chart string) string {
	if len(chart) > maxSheetName {
		return chart[:maxSheetName]
	}
	return chart
}
