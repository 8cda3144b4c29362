package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueCounts(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   Counts
	}{
		{
			name:   "most frequent first",
			values: []string{"b", "a", "b", "c", "b", "a"},
			want:   Counts{{"b", 3}, {"a", 2}, {"c", 1}},
		},
		{
			name:   "ties keep first appearance",
			values: []string{"x", "y", "z", "y", "x"},
			want:   Counts{{"x", 2}, {"y", 2}, {"z", 1}},
		},
		{
			name:   "blanks skipped and values trimmed",
			values: []string{"", " a ", "a", "   "},
			want:   Counts{{"a", 2}},
		},
		{
			name:   "empty input",
			values: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueCounts(tt.values))
		})
	}
}

func TestReindex(t *testing.T) {
	c := Counts{{"Tuesday", 4}, {"Saturday", 1}, {"Monday", 2}}
	got := Reindex(c, []string{"Monday", "Tuesday", "Wednesday"})

	assert.Equal(t, Counts{{"Monday", 2}, {"Tuesday", 4}, {"Wednesday", 0}}, got)
}

func TestSortByLabel(t *testing.T) {
	c := Counts{{"10", 1}, {"2", 5}, {"3", 2}}

	got := SortByLabel(c, Numeric)
	assert.Equal(t, []string{"2", "3", "10"}, got.Labels())
	assert.Equal(t, []string{"10", "2", "3"}, c.Labels(), "input untouched")
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"-1", "0", true},
		{"7", "7", false},
		{"10", "x", true},
		{"b", "a", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Numeric(tt.a, tt.b), "%s < %s", tt.a, tt.b)
	}
}

func TestCountsHelpers(t *testing.T) {
	c := Counts{{"a", 3}, {"b", 1}}

	assert.Equal(t, 4, c.Total())
	assert.InDelta(t, 75.0, c.Percent(0), 1e-9)
	assert.Zero(t, c.Percent(5))
	assert.Zero(t, Counts{}.Percent(0))
	assert.Equal(t, []int{3, 1}, c.Values())
	assert.Len(t, c.Top(1), 1)
	assert.Len(t, c.Top(10), 2)

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get("z")
	assert.False(t, ok)
}

func TestUnique(t *testing.T) {
	values := []string{"Alice", "", "Bob", "Alice", " Carol "}
	assert.Equal(t, 3, NUnique(values))
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, Unique(values))
}
