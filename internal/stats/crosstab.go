package stats

import "sort"

// Crosstab is a two-way frequency table.
type Crosstab struct {
	RowHeader string   `json:"row_header"`
	ColHeader string   `json:"col_header"`
	Rows      []string `json:"rows"`
	Cols      []string `json:"cols"`
	Cells     [][]int  `json:"cells"`
}

// CrosstabOptions controls label ordering. Nil orderings sort lexically.
// Fixed column labels, when given, are used verbatim and in order; pairs
// whose column is not listed are ignored.
type CrosstabOptions struct {
	RowLess   func(a, b string) bool
	ColLess   func(a, b string) bool
	FixedCols []string
}

// NewCrosstab counts (rows[i], cols[i]) pairs. Pairs with a blank side are
// dropped. rows and cols must have equal length.
func NewCrosstab(rowHeader, colHeader string, rows, cols []string, opts CrosstabOptions) *Crosstab {
	n := len(rows)
	if len(cols) < n {
		n = len(cols)
	}

	counts := make(map[[2]string]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})

	fixed := make(map[string]struct{}, len(opts.FixedCols))
	for _, c := range opts.FixedCols {
		fixed[c] = struct{}{}
	}

	for i := 0; i < n; i++ {
		r, c := rows[i], cols[i]
		if r == "" || c == "" {
			continue
		}
		if len(fixed) > 0 {
			if _, ok := fixed[c]; !ok {
				continue
			}
		}
		counts[[2]string{r, c}]++
		rowSet[r] = struct{}{}
		colSet[c] = struct{}{}
	}

	ct := &Crosstab{
		RowHeader: rowHeader,
		ColHeader: colHeader,
		Rows:      sortedKeys(rowSet, opts.RowLess),
	}
	if len(opts.FixedCols) > 0 {
		ct.Cols = append([]string(nil), opts.FixedCols...)
	} else {
		ct.Cols = sortedKeys(colSet, opts.ColLess)
	}

	ct.Cells = make([][]int, len(ct.Rows))
	for i, r := range ct.Rows {
		ct.Cells[i] = make([]int, len(ct.Cols))
		for j, c := range ct.Cols {
			ct.Cells[i][j] = counts[[2]string{r, c}]
		}
	}
	return ct
}

func sortedKeys(set map[string]struct{}, less func(a, b string) bool) []string {
	if less == nil {
		less = Lexical
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Empty reports whether the table has no cells.
func (c *Crosstab) Empty() bool {
	return c == nil || len(c.Rows) == 0 || len(c.Cols) == 0
}

// Get returns the count at row r and column col.
func (c *Crosstab) Get(r, col int) int {
	if r < 0 || r >= len(c.Rows) || col < 0 || col >= len(c.Cols) {
		return 0
	}
	return c.Cells[r][col]
}

// ColumnMax returns the largest count in column col.
func (c *Crosstab) ColumnMax(col int) int {
	best := 0
	for r := range c.Rows {
		if v := c.Get(r, col); v > best {
			best = v
		}
	}
	return best
}

// IsColumnMax reports whether cell (r, col) holds its column's maximum.
// All tied cells qualify; an all-zero column has no maximum.
func (c *Crosstab) IsColumnMax(r, col int) bool {
	best := c.ColumnMax(col)
	return best > 0 && c.Get(r, col) == best
}

// RowTotal sums row r.
func (c *Crosstab) RowTotal(r int) int {
	total := 0
	for col := range c.Cols {
		total += c.Get(r, col)
	}
	return total
}

// ColTotal sums column col.
func (c *Crosstab) ColTotal(col int) int {
	total := 0
	for r := range c.Rows {
		total += c.Get(r, col)
	}
	return total
}

// Total sums every cell.
func (c *Crosstab) Total() int {
	total := 0
	for r := range c.Rows {
		total += c.RowTotal(r)
	}
	return total
}

// Column returns column col as Counts labelled by row.
func (c *Crosstab) Column(col int) Counts {
	out := make(Counts, len(c.Rows))
	for r, label := range c.Rows {
		out[r] = Count{Label: label, Value: c.Get(r, col)}
	}
	return out
}
