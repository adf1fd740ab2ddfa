package renderer

import (
	"fmt"
	"io"

	"github.com/etnz/reconcile"
	"github.com/xuri/excelize/v2"
)

// ComparativeSheet is the name of the sheet written by WriteComparativeXLSX.
const ComparativeSheet = "Comparative"

var comparativeHeader = []any{"Group", "Opening", "Debit", "Credit", "Calculated", "Adjustment", "Reported", "Difference", "Status", "Note"}

// WriteComparativeXLSX writes the comparative table as a spreadsheet: a
// header, one row per group and a totals row. Amounts are written as numbers.
func WriteComparativeXLSX(w io.Writer, t reconcile.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ComparativeSheet); err != nil {
		return fmt.Errorf("cannot name sheet: %w", err)
	}
	if err := setRow(f, 1, comparativeHeader); err != nil {
		return err
	}
	for i, r := range t.Rows {
		row := []any{r.Name,
			number(r.Opening), number(r.Debit), number(r.Credit), number(r.Calculated),
			number(r.Adjustment), number(r.Reported), number(r.Difference),
			string(r.Status), r.Note,
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	tt := t.Totals
	total := []any{"Total",
		number(tt.Opening), number(tt.Debit), number(tt.Credit), number(tt.Calculated),
		number(tt.Adjustment), number(tt.Reported), number(tt.Difference),
	}
	if err := setRow(f, len(t.Rows)+2, total); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("cannot create amount style: %w", err)
	}
	if err := f.SetColStyle(ComparativeSheet, "B:H", style); err != nil {
		return fmt.Errorf("cannot style amount columns: %w", err)
	}
	if err := f.SetColWidth(ComparativeSheet, "A", "A", 40); err != nil {
		return fmt.Errorf("cannot size name column: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write spreadsheet: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(ComparativeSheet, cell, &values); err != nil {
		return fmt.Errorf("cannot write row %d: %w", n, err)
	}
	return nil
}

// number converts an amount for a spreadsheet cell.
func number(a reconcile.Amount) float64 { return a.InexactFloat64() }
