package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/reconcile"
)

// ReadBalances reads a balance listing: one counterparty name and one signed
// balance per row, under a header such as "Razón Social" and "Saldo".
//
// Rows without a name are skipped. Names are kept as written: matching them
// to groups is the engine's concern.
func ReadBalances(r io.Reader, format Format) ([]reconcile.BalanceEntry, error) {
	rows, err := readRows(r, format)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("balances: %w", ErrEmptyFile)
	}
	header := rows[0]
	cols := mapColumns(header, fieldName, fieldBalance)
	for _, f := range []field{fieldName, fieldBalance} {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("balances: %w %s in header %q", ErrMissingColumn, f, header)
		}
	}

	var entries []reconcile.BalanceEntry
	var errs error
	for i, row := range rows[1:] {
		name := cols.cell(row, fieldName)
		if name == "" {
			continue
		}
		balance, err := reconcile.ParseAmount(cols.cell(row, fieldBalance))
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		entries = append(entries, reconcile.BalanceEntry{Name: name, Balance: balance})
	}
	if errs != nil {
		return nil, errs
	}
	return entries, nil
}

// JSONPaths locate balance entries in a JSON document.
type JSONPaths struct {
	Rows    string // selects the list of entries in the document
	Name    string // selects the name in an entry
	Balance string // selects the balance in an entry
}

// DefaultJSONPaths read documents like {"saldos":[{"razonSocial":"ACME SA","saldo":1500.5}]}.
var DefaultJSONPaths = JSONPaths{
	Rows:    "$.saldos[*]",
	Name:    "$.razonSocial",
	Balance: "$.saldo",
}

// ReadBalancesJSON reads a balance listing from a JSON document.
//
// Balances may be JSON numbers or strings in any format ParseAmount
// accepts. Entries without a name are skipped.
func ReadBalancesJSON(r io.Reader, paths JSONPaths) ([]reconcile.BalanceEntry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("balances: invalid json: %w", err)
	}

	found, err := jsonpath.Get(paths.Rows, doc)
	if err != nil {
		return nil, fmt.Errorf("balances: %q: %w", paths.Rows, err)
	}
	rows, ok := found.([]any)
	if !ok {
		return nil, fmt.Errorf("balances: %q does not select a list", paths.Rows)
	}

	var entries []reconcile.BalanceEntry
	var errs error
	for i, row := range rows {
		name, err := jsonString(paths.Name, row)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if name == "" {
			continue
		}
		raw, err := jsonString(paths.Balance, row)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		balance, err := reconcile.ParseAmount(raw)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		entries = append(entries, reconcile.BalanceEntry{Name: name, Balance: balance})
	}
	if errs != nil {
		return nil, errs
	}
	return entries, nil
}

// jsonString evaluates path against value and returns the result as text.
// A missing key or a null is the empty string.
func jsonString(path string, value any) (string, error) {
	v, err := jsonpath.Get(path, value)
	if err != nil {
		// jsonpath reports missing keys as errors.
		return "", nil
	}
	// a path may select a list of one answer, keep the first one if any.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return "", nil
		}
		v = list[0]
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%q: unexpected value %v", path, v)
	}
}
