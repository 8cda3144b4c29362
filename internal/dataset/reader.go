package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "advisingdash/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Supported file extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// SupportedExtension reports whether filename has an extension Read accepts.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtCSV, ExtXLSX:
		return true
	}
	return false
}

// Read parses r according to the extension of filename.
func Read(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtCSV:
		return ReadCSV(r)
	case ExtXLSX:
		return ReadXLSX(r)
	default:
		return nil, apierrors.NewAppValidationError(
			fmt.Sprintf("unsupported file type %q: upload a .csv or .xlsx export", filepath.Ext(filename)),
		)
	}
}

// ReadCSV parses a comma-separated export. A leading UTF-8 BOM is ignored
// and rows may have any number of fields.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apierrors.NewParsingError("file is empty", nil)
	}
	if err != nil {
		return nil, apierrors.NewParsingError("could not read csv header", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError("could not read csv row", err)
		}
		rows = append(rows, record)
	}

	return newCheckedTable(header, rows)
}

// ReadXLSX parses the first worksheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("could not open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError("workbook has no sheets", nil)
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("could not read sheet %q", sheets[0]), err)
	}
	newCellDates(f).rewrite(sheets[0], all)

	// Leading blank rows are skipped so the first populated row is the header.
	for len(all) > 0 && isBlankRow(all[0]) {
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, apierrors.NewParsingError("file is empty", nil)
	}

	return newCheckedTable(all[0], all[1:])
}

func newCheckedTable(header []string, rows [][]string) (*Table, error) {
	if isBlankRow(header) {
		return nil, apierrors.NewParsingError("header row is blank", nil)
	}
	return NewTable(header, rows), nil
}
