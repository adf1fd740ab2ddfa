package ingest

import (
	"strings"

	"github.com/etnz/reconcile"
)

// field is a column the readers interpret.
type field int

const (
	fieldDate field = iota
	fieldDescription
	fieldDebit
	fieldCredit
	fieldCounterparty
	fieldName
	fieldBalance
)

var fieldNames = map[field]string{
	fieldDate:         "date",
	fieldDescription:  "description",
	fieldDebit:        "debit",
	fieldCredit:       "credit",
	fieldCounterparty: "counterparty",
	fieldName:         "name",
	fieldBalance:      "balance",
}

func (f field) String() string { return fieldNames[f] }

// aliases lists, for each field, the headers it is found under, by preference.
var aliases = map[field][]string{
	fieldDate:         {"fecha", "date", "fec", "fcha"},
	fieldDescription:  {"descripcion", "concepto", "detalle", "description", "desc", "leyenda"},
	fieldDebit:        {"debe", "debit", "debito"},
	fieldCredit:       {"haber", "credit", "credito"},
	fieldCounterparty: {"razon social", "razon_social", "razonsocial", "cliente", "proveedor", "tercero", "counterparty"},
	fieldName:         {"razon social", "razon_social", "razonsocial", "nombre", "name", "cliente", "proveedor", "denominacion", "counterparty"},
	fieldBalance:      {"saldo", "balance", "importe", "monto", "amount"},
}

// columns maps fields to their index in a header row.
type columns map[field]int

// mapColumns finds the wanted fields in header. Headers are compared under
// reconcile.Normalize, so case, accents and surrounding spaces do not matter.
func mapColumns(header []string, wanted ...field) columns {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = reconcile.Normalize(h)
	}
	cols := make(columns)
	for _, f := range wanted {
	search:
		for _, alias := range aliases[f] {
			alias = reconcile.Normalize(alias)
			for i, k := range keys {
				if k == alias {
					cols[f] = i
					break search
				}
			}
		}
	}
	return cols
}

// mapped reports whether the header column i was interpreted.
func (c columns) mapped(i int) bool {
	for _, j := range c {
		if i == j {
			return true
		}
	}
	return false
}

// cell returns the trimmed value of field f in row, or "" if the field is
// missing from the file or the row is short.
func (c columns) cell(row []string, f field) string {
	i, ok := c[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
