package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-04 13:30:00", time.Date(2024, 3, 4, 13, 30, 0, 0, time.UTC), true},
		{"2024-03-04T13:30:00", time.Date(2024, 3, 4, 13, 30, 0, 0, time.UTC), true},
		{"3/4/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"03/04/2024 9:15 am", time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC), true},
		{"March 4, 2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"March 4, 2024 2:00 pm", time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC), true},
		{"Mar 4, 2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"  2024-03-04  ", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"next tuesday", time.Time{}, false},
		{"2024-13-40", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestParseISODate(t *testing.T) {
	got, ok := ParseISODate("2024-05-01")
	assert.True(t, ok)
	assert.Equal(t, time.May, got.Month())

	got, ok = ParseISODate("2024-05-01 09:30:00")
	assert.True(t, ok)
	assert.Equal(t, 9, got.Hour())

	_, ok = ParseISODate("5/1/2024")
	assert.False(t, ok)

	_, ok = ParseISODate("")
	assert.False(t, ok)
}
