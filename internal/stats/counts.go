// Package stats implements the grouping primitives the dashboards are built
// from: value counts, reindexing and two-way crosstabs over string labels.
package stats

import (
	"sort"
	"strconv"
	"strings"
)

// Count is one labelled frequency.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Counts is an ordered frequency table.
type Counts []Count

// ValueCounts counts the non-blank values, most frequent first. Ties keep
// the order in which labels first appeared.
func ValueCounts(values []string) Counts {
	index := make(map[string]int)
	var out Counts
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			out[i].Value++
			continue
		}
		index[v] = len(out)
		out = append(out, Count{Label: v, Value: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// Reindex returns exactly labels, in order, taking values from c and
// filling absent labels with zero.
func Reindex(c Counts, labels []string) Counts {
	values := make(map[string]int, len(c))
	for _, item := range c {
		values[item.Label] = item.Value
	}
	out := make(Counts, len(labels))
	for i, l := range labels {
		out[i] = Count{Label: l, Value: values[l]}
	}
	return out
}

// SortByLabel returns a copy of c ordered by less applied to labels.
func SortByLabel(c Counts, less func(a, b string) bool) Counts {
	out := make(Counts, len(c))
	copy(out, c)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Label, out[j].Label)
	})
	return out
}

// Top returns at most the first n entries.
func (c Counts) Top(n int) Counts {
	if n < 0 || n >= len(c) {
		return c
	}
	return c[:n]
}

// Total sums every value.
func (c Counts) Total() int {
	total := 0
	for _, item := range c {
		total += item.Value
	}
	return total
}

// Percent returns entry i as a percentage of the total.
func (c Counts) Percent(i int) float64 {
	total := c.Total()
	if total == 0 || i < 0 || i >= len(c) {
		return 0
	}
	return float64(c[i].Value) * 100 / float64(total)
}

// Labels returns the labels in order.
func (c Counts) Labels() []string {
	out := make([]string, len(c))
	for i, item := range c {
		out[i] = item.Label
	}
	return out
}

// Values returns the values in order.
func (c Counts) Values() []int {
	out := make([]int, len(c))
	for i, item := range c {
		out[i] = item.Value
	}
	return out
}

// Get returns the value for label and whether it is present.
func (c Counts) Get(label string) (int, bool) {
	for _, item := range c {
		if item.Label == label {
			return item.Value, true
		}
	}
	return 0, false
}

// NUnique counts distinct non-blank values.
func NUnique(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Unique returns distinct non-blank values in order of first appearance.
func Unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Lexical orders labels as plain strings.
func Lexical(a, b string) bool {
	return a < b
}

// Numeric orders integer labels by value, falling back to Lexical when
// either label is not an integer.
func Numeric(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return x < y
}
