package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"advisingdash/internal/dataset"
	"advisingdash/internal/stats"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCountsCSV writes a two-column frequency table.
func WriteCountsCSV(w io.Writer, labelHeader, valueHeader string, counts stats.Counts, bom bool) error {
	records := make([][]string, len(counts))
	for i, c := range counts {
		records[i] = []string{c.Label, formatInt(c.Value)}
	}
	return WriteCSV(w, WriteOptions{
		Headers:   []string{labelHeader, valueHeader},
		Records:   records,
		BOMPrefix: bom,
	})
}

// WriteCrosstabCSV writes ct with its row labels in the first column.
func WriteCrosstabCSV(w io.Writer, ct *stats.Crosstab, bom bool) error {
	headers := append([]string{ct.RowHeader}, ct.Cols...)
	records := make([][]string, len(ct.Rows))
	for r, label := range ct.Rows {
		record := make([]string, 0, len(ct.Cols)+1)
		record = append(record, label)
		for c := range ct.Cols {
			record = append(record, formatInt(ct.Get(r, c)))
		}
		records[r] = record
	}
	return WriteCSV(w, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: bom,
	})
}

// WriteTableCSV writes a raw table unchanged.
func WriteTableCSV(w io.Writer, t *dataset.Table, bom bool) error {
	return WriteCSV(w, WriteOptions{
		Headers:   t.Columns,
		Records:   t.Rows,
		BOMPrefix: bom,
	})
}
