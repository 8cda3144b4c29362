package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "advisingdash/internal/errors"
)

func TestNewTable_NormalizesRows(t *testing.T) {
	table := NewTable(
		[]string{" Calendar ", "Type", "Student Number"},
		[][]string{
			{"Alice", "Drop-in"},
			{"", " ", ""},
			{"Bob", "Scheduled", "123", "extra"},
		},
	)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Calendar", "Type", "Student Number"}, table.Columns)
	assert.Equal(t, []string{"Alice", "Drop-in", ""}, table.Rows[0])
	assert.Equal(t, []string{"Bob", "Scheduled", "123"}, table.Rows[1])
}

func TestTable_HeaderLookup(t *testing.T) {
	table := NewTable(
		[]string{"Where in the writing process are you? ", "What is your current major?"},
		[][]string{{" I have a draft ", "cs"}},
	)

	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"exact with trailing space", "Where in the writing process are you? ", true},
		{"trimmed", "Where in the writing process are you?", true},
		{"case folded", "what is your current MAJOR?", true},
		{"collapsed whitespace", "What  is your   current major?", true},
		{"absent", "Calendar", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.found, table.Has(tt.query))
		})
	}

	assert.Equal(t, "I have a draft", table.Value(0, "where in the writing process are you?"))
	assert.Equal(t, "", table.Value(0, "Calendar"))
	assert.Equal(t, "", table.Value(5, "What is your current major?"))
	assert.Equal(t, []string{"cs"}, table.Column("what is your current major?"))
	assert.Nil(t, table.Column("missing"))
}

func TestTable_Require(t *testing.T) {
	table := NewTable([]string{"Date Scheduled", "Calendar"}, nil)

	assert.NoError(t, table.Require("date scheduled", "CALENDAR"))

	err := table.Require("Calendar", "Type", "Student Number")
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Message, "Type, Student Number")
	assert.Equal(t, []string{"Type", "Student Number"}, appErr.Context["missing_columns"])
}

func TestTable_HeadAndSelect(t *testing.T) {
	table := NewTable([]string{"n"}, [][]string{{"1"}, {"2"}, {"3"}})

	assert.Equal(t, 2, table.Head(2).Len())
	assert.Equal(t, 3, table.Head(10).Len())
	assert.Equal(t, 0, table.Head(-1).Len())

	sel := table.Select([]int{2, 0, 7})
	require.Equal(t, 2, sel.Len())
	assert.Equal(t, "3", sel.Value(0, "n"))
	assert.Equal(t, "1", sel.Value(1, "n"))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("Calendar,Type\nAlice,Drop-in\n"))
	b := Fingerprint([]byte("Calendar,Type\nAlice,Drop-in\n"))
	c := Fingerprint([]byte("Calendar,Type\nBob,Drop-in\n"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
