// Package exporter writes dashboard tables for download.
//
// Workbook assembles a multi-sheet XLSX report with excelize: metric
// sheets, frequency tables and crosstabs with the per-column maximum
// highlighted. The CSV writers emit a single table, optionally prefixed
// with a UTF-8 BOM so Excel detects the encoding.
//
// Example usage:
//
//	wb, err := exporter.NewWorkbook()
//	if err != nil {
//	    return err
//	}
//	defer wb.Close()
//	if err := wb.AddCrosstab("Repeat Status", report.RepeatStatus, true); err != nil {
//	    return err
//	}
//	_, err = wb.WriteTo(w)
package exporter
