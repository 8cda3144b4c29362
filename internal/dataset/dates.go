package dataset

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. Scheduling exports vary
// between ISO timestamps, US slash dates and spelled-out months.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1/2/06",
	"January 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04PM",
	"Jan 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 3:04PM",
	"2 January 2006",
}

// ParseDate parses s leniently. Blank or unrecognized input yields false,
// mirroring a coerce-to-missing conversion.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Meridiem markers only parse upper-case; month names match in any case.
	upper := strings.ToUpper(s)
	for _, layout := range dateLayouts {
		candidate := s
		if strings.HasSuffix(layout, "PM") {
			candidate = upper
		}
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseISODate accepts only YYYY-MM-DD, optionally followed by an HH:MM:SS
// clock as written by FormatISO for Excel date cells.
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
