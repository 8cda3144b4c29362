package dataset

import (
	"fmt"
	"strings"

	apierrors "advisingdash/internal/errors"
)

// Table is a rectangular block of string cells with a header row.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a Table, padding or truncating every row to the header
// width and dropping rows whose cells are all blank.
func NewTable(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		normalized := make([]string, len(cols))
		copy(normalized, row)
		kept = append(kept, normalized)
	}

	t := &Table{Columns: cols, Rows: kept}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		key := NormalizeHeader(c)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
}

// NormalizeHeader lower-cases h, trims it and collapses inner whitespace.
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[NormalizeHeader(name)]
	return i, ok
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// Value returns the trimmed cell at row for the named column, or "" when
// the column is absent.
func (t *Table) Value(row int, name string) string {
	i, ok := t.Index(name)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][i])
}

// Column returns every trimmed value of the named column.
func (t *Table) Column(name string) []string {
	i, ok := t.Index(name)
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = strings.TrimSpace(row[i])
	}
	return out
}

// Require returns a validation error naming every missing column.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apierrors.NewAppValidationError(
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
	).WithContext("missing_columns", missing)
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n], index: t.index}
}

// Select returns a table with the rows at the given indices, in order.
func (t *Table) Select(rows []int) *Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < len(t.Rows) {
			out = append(out, t.Rows[r])
		}
	}
	return &Table{Columns: t.Columns, Rows: out, index: t.index}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
