// Package ingest reads the files an auditor is handed: a general-ledger
// export and opening or closing balance listings. It turns them into the
// records, initial partition and balance entries the reconcile engine works
// with.
package ingest

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
)

// Format is a tabular file format.
type Format int

const (
	XLSX Format = iota
	CSV
)

func (f Format) String() string {
	switch f {
	case XLSX:
		return "xlsx"
	case CSV:
		return "csv"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is returned for files that are neither spreadsheets
// nor csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat guesses the format from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".csv", ".txt":
		return CSV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// readRows reads all rows of the first sheet, or of the csv file.
//
// Spreadsheet cells are read raw: dates come out as serial numbers and
// amounts without their display format.
func readRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case CSV:
		br := bufio.NewReader(r)
		cr := csv.NewReader(br)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		cr.Comma = sniffComma(br)
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("cannot read csv: %w", err)
		}
		return rows, nil
	case XLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("cannot open spreadsheet: %w", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("cannot read sheet %q: %w", sheet, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// sniffComma returns ';' when the header line uses it, as spreadsheets
// exported with a comma decimal separator do, and ',' otherwise.
func sniffComma(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	line, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
