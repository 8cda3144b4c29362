package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Built-in number formats that carry a calendar date. Time-only formats
// (18-21, 45-47) are left as displayed.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// cellDates rewrites date-formatted cells of a workbook as ISO text.
// Excel stores dates as serial numbers and GetRows returns them in the
// cell's display format ("01-08-24", "1/8/24 09:30"), which is ambiguous.
type cellDates struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newCellDates(f *excelize.File) *cellDates {
	d := &cellDates{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// rewrite replaces, in place, every value in rows whose cell has a date
// number format. rows must be the sheet's rows starting at row 1.
func (d *cellDates) rewrite(sheet string, rows [][]string) {
	for i, row := range rows {
		for j, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			if iso, ok := d.isoValue(sheet, cell); ok {
				row[j] = iso
			}
		}
	}
}

func (d *cellDates) isoValue(sheet, cell string) (string, bool) {
	styleID, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || !d.isDateStyle(styleID) {
		return "", false
	}
	raw, err := d.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", false
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	return FormatISO(t.Round(time.Second)), true
}

func (d *cellDates) isDateStyle(id int) bool {
	if id == 0 {
		return false
	}
	if v, ok := d.styles[id]; ok {
		return v
	}
	isDate := false
	if style, err := d.f.GetStyle(id); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = builtinDateFormats[style.NumFmt]
		}
	}
	d.styles[id] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format shows a year or
// day. Quoted literals, escapes and bracketed sections such as colors and
// locales are ignored; "m" alone is ambiguous with minutes.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		case c == 'y' || c == 'd':
			return true
		}
	}
	return false
}

// FormatISO renders t as YYYY-MM-DD, adding the clock only when it is not
// midnight.
func FormatISO(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
