package services

import (
	"fmt"
	"strconv"
	"strings"

	"bixi-eda/table"
	"bixi-eda/utils"
)

// Cleaner removes incomplete and duplicated trips.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops incomplete rows, then exact duplicates.
func (c *Cleaner) Clean(t *table.Table) (*table.Table, error) {
	complete, err := c.DropIncompleteRows(t)
	if err != nil {
		return nil, err
	}
	return c.DropDuplicateRows(complete)
}

// DropIncompleteRows keeps only rows with a value in every column.
func (c *Cleaner) DropIncompleteRows(t *table.Table) (*table.Table, error) {
	n := t.Nrow()
	missing := make([]bool, n)
	for _, name := range t.Names() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for i, na := range col.IsNaN() {
			if na {
				missing[i] = true
			}
		}
	}

	keep := make([]int, 0, n)
	for i, m := range missing {
		if !m {
			keep = append(keep, i)
		}
	}

	out, err := t.Subset(keep)
	if err != nil {
		return nil, fmt.Errorf("drop incomplete rows: %w", err)
	}
	c.logger.Info("[cleaner] Dropped %d incomplete rows (%d -> %d)", n-len(keep), n, len(keep))
	return out, nil
}

// DropDuplicateRows keeps the first occurrence of every distinct row,
// preserving row order.
func (c *Cleaner) DropDuplicateRows(t *table.Table) (*table.Table, error) {
	rows := t.Rows()
	seen := make(map[string]struct{}, len(rows))
	keep := make([]int, 0, len(rows))

	for i, row := range rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			c.logger.Debug("[cleaner] Duplicate row %d skipped", i)
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	out, err := t.Subset(keep)
	if err != nil {
		return nil, fmt.Errorf("drop duplicate rows: %w", err)
	}
	c.logger.Info("[cleaner] Dropped %d duplicate rows (%d -> %d)", len(rows)-len(keep), len(rows), len(keep))
	return out, nil
}

// rowKey length-prefixes every cell so that no two distinct rows share a key.
func rowKey(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}
