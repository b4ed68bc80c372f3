package model

import "fmt"

// TableCell is one positioned cell of a sparse table. Row and Col are
// 0-based grid coordinates; spans of zero mean 1.
type TableCell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	Text    string
	BBox    BoundingBox
}

// Table is an extracted table with optional header row. Headers and
// Rows hold the normalized grid form produced by extraction; Cells
// optionally carries sparse positioned cells, which To2DArray places
// into the dense grid alongside the rows.
type Table struct {
	Page       int
	BBox       BoundingBox
	Headers    []string
	Rows       [][]string
	Cells      []TableCell
	Method     string
	Confidence float64
	Metadata   map[string]any
}

// RowCount returns the number of data rows, excluding headers.
func (t Table) RowCount() int { return len(t.Rows) }

// ColumnCount returns the widest row or header width.
func (t Table) ColumnCount() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// IsEmpty reports whether the table has no cells at all.
func (t Table) IsEmpty() bool {
	if len(t.Headers) > 0 || len(t.Cells) > 0 {
		return false
	}
	for _, row := range t.Rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Dimensions returns the dense grid shape implied by the table's
// content: the header and data rows, widened and deepened by any
// sparse cells.
func (t Table) Dimensions() (rows, cols int) {
	rows = len(t.Rows)
	if len(t.Headers) > 0 {
		rows++
	}
	cols = t.ColumnCount()
	for _, c := range t.Cells {
		if c.Row >= rows {
			rows = c.Row + 1
		}
		if c.Col >= cols {
			cols = c.Col + 1
		}
	}
	return rows, cols
}

// To2DArray reconstructs the table as a dense grid: the header row
// first when headers exist, every row padded to the full column count
// with empty strings, and sparse cells placed at their coordinates.
// Ragged input never yields a ragged grid. The result is a fresh
// slice; mutating it leaves the table unchanged.
func (t Table) To2DArray() [][]string {
	rows, cols := t.Dimensions()
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	next := 0
	if len(t.Headers) > 0 {
		copy(grid[0], t.Headers)
		next = 1
	}
	for _, row := range t.Rows {
		copy(grid[next], row)
		next++
	}
	for _, c := range t.Cells {
		if c.Row >= 0 && c.Col >= 0 {
			grid[c.Row][c.Col] = c.Text
		}
	}
	return grid
}

// ToMaps returns one map per data row keyed by header name. Missing or
// empty header names fall back to Column_N (1-based). Rows shorter than
// the header row are padded with empty strings; cells past the header
// row get fallback keys.
func (t Table) ToMaps() []map[string]string {
	width := t.ColumnCount()
	keys := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(t.Headers) && t.Headers[i] != "" {
			keys[i] = t.Headers[i]
		} else {
			keys[i] = fmt.Sprintf("Column_%d", i+1)
		}
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, width)
		for i, key := range keys {
			if i < len(row) {
				m[key] = row[i]
			} else {
				m[key] = ""
			}
		}
		out = append(out, m)
	}
	return out
}
