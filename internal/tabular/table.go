// Package tabular reads and writes header-first tables as CSV or XLSX files.
package tabular

import (
	"path/filepath"
	"strings"
)

// Table is a header row followed by data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of a header, or -1 when absent.
func (t Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, col), or "" when out of range.
func (t Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Missing returns the names that are not present in the header, in the given order.
func (t Table) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if t.Index(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Head returns a copy of the table limited to the first n rows.
func (t Table) Head(n int) Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{Header: t.Header, Rows: t.Rows[:n]}
}

type format int

const (
	formatCSV format = iota
	formatXLSX
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX
	default:
		return formatCSV
	}
}

func normalizeRows(header []string, rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, row)
		out = append(out, cells)
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
