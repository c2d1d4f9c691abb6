// Package tabular loads delimited files into an in-memory table shared by the
// security validator's content-quality checks and the CSV query engine.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Table is a fully materialised delimited file. Rows are kept as strings;
// numeric interpretation is done lazily by the consumers.
type Table struct {
	Columns   []string
	Rows      [][]string
	Separator rune
}

// candidateSeparators are tried in order when loading a delimited file.
// A separator wins as soon as it yields more than one column.
var candidateSeparators = []rune{',', ';', '\t', '|'}

// Load reads a delimited file, sniffing the separator. Ragged rows are
// tolerated: short rows are padded with empty cells, long rows truncated to
// the header width.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse parses delimited content, trying each candidate separator.
func Parse(content string) (*Table, error) {
	var lastErr error
	var single *Table
	for _, sep := range candidateSeparators {
		t, err := parseWith(content, sep)
		if err != nil {
			lastErr = err
			continue
		}
		if len(t.Columns) > 1 {
			return t, nil
		}
		// Single column is plausible; remember it but try other separators.
		if single == nil {
			single = t
		}
	}
	if single != nil {
		return single, nil
	}
	return nil, lastErr
}

func parseWith(content string, sep rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited content: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty delimited content")
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: header, Rows: rows, Separator: sep}, nil
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MissingCells counts empty cells across the whole table.
func (t *Table) MissingCells() int {
	missing := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				missing++
			}
		}
	}
	return missing
}

// MissingPercent returns the share of empty cells as a percentage.
func (t *Table) MissingPercent() float64 {
	total := len(t.Rows) * len(t.Columns)
	if total == 0 {
		return 0
	}
	return float64(t.MissingCells()) / float64(total) * 100
}

// DuplicateColumns returns column names that appear more than once, in
// first-seen order.
func (t *Table) DuplicateColumns() []string {
	seen := make(map[string]int, len(t.Columns))
	var dups []string
	for _, c := range t.Columns {
		seen[c]++
		if seen[c] == 2 {
			dups = append(dups, c)
		}
	}
	return dups
}

// NumericColumn parses the named column as floats. Cells that do not parse
// are skipped; ok is false when the column does not exist or has no numeric
// values at all.
func (t *Table) NumericColumn(name string) (values []float64, ok bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	for _, row := range t.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

// IsNumericColumn reports whether the majority of the column's non-empty
// cells parse as numbers.
func (t *Table) IsNumericColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	numeric, nonEmpty := 0, 0
	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			numeric++
		}
	}
	return nonEmpty > 0 && numeric*2 > nonEmpty
}

// RowMap returns row i keyed by column name. Duplicate column names keep the
// last value, matching the lossy behaviour of map-shaped rows.
func (t *Table) RowMap(i int) map[string]string {
	m := make(map[string]string, len(t.Columns))
	for j, c := range t.Columns {
		m[c] = t.Rows[i][j]
	}
	return m
}
