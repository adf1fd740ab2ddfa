package ingest

import (
	"bytes"
	"testing"

	"github.com/etnz/reconcile"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// xlsx builds a single sheet spreadsheet from rows.
func xlsx(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

// amounts is a helper for test to compare amounts as strings.
func amounts(as ...reconcile.Amount) []string {
	var out []string
	for _, a := range as {
		out = append(out, a.String())
	}
	return out
}
