package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/date"
)

var (
	// ErrMissingColumn is returned when a file lacks a column the reader needs.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyFile is returned for files without a header row.
	ErrEmptyFile = errors.New("empty file")
)

// Ledger is a general-ledger export as read from a file.
type Ledger struct {
	Records []reconcile.Record
	// Extras holds, by record id, the source columns that are not record fields.
	Extras map[string]map[string]string
	// Header is the header row as found in the file.
	Header []string
}

// RecordID returns the id given to the record read from a 1-based file row.
func RecordID(row int) string { return fmt.Sprintf("row-%d", row) }

// ReadLedger reads a ledger export.
//
// The first row is the header. Debit and credit columns are required, date,
// description and counterparty are optional, and every other column is kept
// in Extras. Blank rows are skipped. Every invalid row is reported, with its
// row number, in a single joined error; invalid rows include negative
// debits or credits.
func ReadLedger(r io.Reader, format Format) (*Ledger, error) {
	rows, err := readRows(r, format)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ledger: %w", ErrEmptyFile)
	}
	header := rows[0]
	cols := mapColumns(header, fieldDate, fieldDescription, fieldDebit, fieldCredit, fieldCounterparty)
	for _, f := range []field{fieldDebit, fieldCredit} {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("ledger: %w %s in header %q", ErrMissingColumn, f, header)
		}
	}

	l := &Ledger{
		Extras: make(map[string]map[string]string),
		Header: header,
	}
	var errs error
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		rec, err := parseRecord(cols, row, line)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		l.Records = append(l.Records, rec)
		if extras := extraColumns(cols, header, row); len(extras) > 0 {
			l.Extras[rec.ID] = extras
		}
	}
	if errs != nil {
		return nil, errs
	}
	return l, nil
}

func parseRecord(cols columns, row []string, line int) (reconcile.Record, error) {
	rec := reconcile.Record{
		ID:           RecordID(line),
		Description:  cols.cell(row, fieldDescription),
		Counterparty: cols.cell(row, fieldCounterparty),
	}
	var errs error
	var err error
	if rec.Date, err = date.Parse(cols.cell(row, fieldDate)); err != nil {
		errs = errors.Join(errs, err)
	}
	if rec.Debit, err = reconcile.ParseAmount(cols.cell(row, fieldDebit)); err != nil {
		errs = errors.Join(errs, err)
	}
	if rec.Credit, err = reconcile.ParseAmount(cols.cell(row, fieldCredit)); err != nil {
		errs = errors.Join(errs, err)
	}
	if errs != nil {
		return rec, errs
	}
	return rec, rec.Validate()
}

// extraColumns returns the non-empty values of the columns that are not
// record fields, by header name.
func extraColumns(cols columns, header, row []string) map[string]string {
	extras := make(map[string]string)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if cols.mapped(i) || name == "" || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			extras[name] = v
		}
	}
	return extras
}

// Restrict returns the ledger reduced to the records dated within rng.
// Undated records are kept.
func (l *Ledger) Restrict(rng date.Range) *Ledger {
	out := &Ledger{
		Extras: make(map[string]map[string]string),
		Header: l.Header,
	}
	for _, rec := range l.Records {
		if !rng.Contains(rec.Date) {
			continue
		}
		out.Records = append(out.Records, rec)
		if extras, ok := l.Extras[rec.ID]; ok {
			out.Extras[rec.ID] = extras
		}
	}
	return out
}

// Partition groups the ledger records by counterparty, see Partition.
func (l *Ledger) Partition(threshold float64) reconcile.Partition {
	p := Partition(l.Records, threshold)
	p.Extras = l.Extras
	return p
}
