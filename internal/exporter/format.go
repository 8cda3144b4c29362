package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// formatFloat formats with exactly 2 decimal places.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// FormatPercent renders a share the way the dashboards label pie wedges.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// sheetName makes s acceptable to Excel: no []:*?/\ and at most 31 runes.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		s = "Sheet"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
