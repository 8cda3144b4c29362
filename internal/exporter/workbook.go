package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"advisingdash/internal/dataset"
	"advisingdash/internal/stats"
)

// HighlightFill matches the dashboard's translucent purple on white.
const HighlightFill = "#E8D5F9"

// Metric is one labelled headline number.
type Metric struct {
	Name  string
	Value any
}

// Workbook accumulates report sheets in a single XLSX file.
type Workbook struct {
	f         *excelize.File
	sheets    []string
	header    int
	highlight int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "#6A51A3", Style: 1}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	highlight, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HighlightFill}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create highlight style: %w", err)
	}

	return &Workbook{f: f, header: header, highlight: highlight}, nil
}

// Sheets lists sheet names in the order they were added.
func (w *Workbook) Sheets() []string {
	return append([]string(nil), w.sheets...)
}

func (w *Workbook) newSheet(name string) (string, error) {
	name = sheetName(name)
	for _, s := range w.sheets {
		if s == name {
			return "", fmt.Errorf("duplicate sheet %q", name)
		}
	}

	if len(w.sheets) == 0 {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return "", fmt.Errorf("rename default sheet: %w", err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", name, err)
	}

	w.sheets = append(w.sheets, name)
	return name, nil
}

func (w *Workbook) writeRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *Workbook) styleHeader(sheet string, cols int) error {
	if cols == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sheet, "A", lastCol, 18)
}

// AddMetrics writes a Metric/Value sheet.
func (w *Workbook) AddMetrics(sheet string, metrics []Metric) error {
	name, err := w.newSheet(sheet)
	if err != nil {
		return err
	}
	if err := w.writeRow(name, 1, []any{"Metric", "Value"}); err != nil {
		return err
	}
	for i, m := range metrics {
		value := m.Value
		if f, ok := value.(float64); ok {
			value = formatFloat(f)
		}
		if err := w.writeRow(name, i+2, []any{m.Name, value}); err != nil {
			return fmt.Errorf("write metric %q: %w", m.Name, err)
		}
	}
	return w.styleHeader(name, 2)
}

// AddCounts writes a frequency table with a share column.
func (w *Workbook) AddCounts(sheet, labelHeader, valueHeader string, counts stats.Counts) error {
	name, err := w.newSheet(sheet)
	if err != nil {
		return err
	}
	if err := w.writeRow(name, 1, []any{labelHeader, valueHeader, "Percent"}); err != nil {
		return err
	}
	for i, c := range counts {
		if err := w.writeRow(name, i+2, []any{c.Label, c.Value, FormatPercent(counts.Percent(i))}); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, i, err)
		}
	}
	return w.styleHeader(name, 3)
}

// AddCrosstab writes ct with row labels in column A. With highlightMax the
// largest cell of each column is bold on a purple fill.
func (w *Workbook) AddCrosstab(sheet string, ct *stats.Crosstab, highlightMax bool) error {
	name, err := w.newSheet(sheet)
	if err != nil {
		return err
	}

	header := make([]any, 0, len(ct.Cols)+1)
	header = append(header, ct.RowHeader)
	for _, c := range ct.Cols {
		header = append(header, c)
	}
	if err := w.writeRow(name, 1, header); err != nil {
		return err
	}

	for r, label := range ct.Rows {
		row := make([]any, 0, len(ct.Cols)+1)
		row = append(row, label)
		for c := range ct.Cols {
			row = append(row, ct.Get(r, c))
		}
		if err := w.writeRow(name, r+2, row); err != nil {
			return fmt.Errorf("write %s row %q: %w", name, label, err)
		}

		if !highlightMax {
			continue
		}
		for c := range ct.Cols {
			if !ct.IsColumnMax(r, c) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+2, r+2)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(name, cell, cell, w.highlight); err != nil {
				return fmt.Errorf("highlight %s!%s: %w", name, cell, err)
			}
		}
	}
	return w.styleHeader(name, len(header))
}

// AddTable writes a raw table.
func (w *Workbook) AddTable(sheet string, t *dataset.Table) error {
	name, err := w.newSheet(sheet)
	if err != nil {
		return err
	}
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := w.writeRow(name, 1, header); err != nil {
		return err
	}
	for r, cells := range t.Rows {
		row := make([]any, len(cells))
		for i, v := range cells {
			row[i] = v
		}
		if err := w.writeRow(name, r+2, row); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, r, err)
		}
	}
	return w.styleHeader(name, len(header))
}

// WriteTo writes the XLSX document. At least one sheet must have been added.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if len(w.sheets) == 0 {
		return 0, fmt.Errorf("workbook has no sheets")
	}
	w.f.SetActiveSheet(0)
	return w.f.WriteTo(out)
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}
