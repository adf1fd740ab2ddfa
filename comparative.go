package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Status is the reconciliation outcome of a comparative row.
type Status string

const (
	StatusOK             Status = "ok"
	StatusDifference     Status = "difference"
	StatusMissingClosing Status = "missing-closing"
)

// ParseStatus parses a Status; the empty string is accepted and means "any".
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StatusOK, StatusDifference, StatusMissingClosing:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Row compares the balance calculated from the ledger for one group with the
// reported closing balance.
type Row struct {
	GroupID    GroupID
	Name       string
	Opening    Amount
	Debit      Amount
	Credit     Amount
	Calculated Amount // Opening + Debit - Credit
	Adjustment Amount
	Note       string
	Reported   Amount
	Difference Amount // Calculated + Adjustment - Reported
	Status     Status
}

// HasDifference reports whether the difference exceeds the Tolerance.
func (r Row) HasDifference() bool { return r.Difference.Abs().GreaterThan(Tolerance) }

// Totals are the column sums of a set of rows.
type Totals struct {
	Opening    Amount
	Debit      Amount
	Credit     Amount
	Calculated Amount
	Adjustment Amount
	Reported   Amount
	Difference Amount
}

// Table is the comparative table.
type Table struct {
	Rows   []Row
	Totals Totals
}

// SortField is a column of the comparative table.
type SortField int

const (
	SortNone SortField = iota // group order
	SortName
	SortOpening
	SortDebit
	SortCredit
	SortCalculated
	SortAdjustment
	SortReported
	SortDifference
	SortStatus
)

var sortFieldNames = []string{"none", "name", "opening", "debit", "credit", "calculated", "adjustment", "reported", "difference", "status"}

func (f SortField) String() string {
	if int(f) < len(sortFieldNames) {
		return sortFieldNames[f]
	}
	return "unknown"
}

// ParseSortField parses a column name.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	i := slices.Index(sortFieldNames, s)
	if i < 0 {
		return SortNone, fmt.Errorf("unknown sort field %q, want one of %s", s, strings.Join(sortFieldNames, ", "))
	}
	return SortField(i), nil
}

// Filter selects rows of the comparative table. The zero Filter selects all rows.
type Filter struct {
	Name            string // normalized substring of the group name
	Status          Status // "" for any
	OnlyDifferences bool   // keep rows whose difference exceeds the Tolerance
}

func (f Filter) keep(r Row) bool {
	if f.Name != "" && !strings.Contains(Normalize(r.Name), Normalize(f.Name)) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.OnlyDifferences && !r.HasDifference() {
		return false
	}
	return true
}

// TableOptions tune the comparative table.
type TableOptions struct {
	Filter     Filter
	SortBy     SortField
	Descending bool
}

// ComparativeTable derives the comparative table from the current state.
//
// It never mutates the store: calling it twice without mutation in between
// returns identical tables. Totals are the column sums of the returned rows,
// after filtering.
func (s *Store) ComparativeTable(opts TableOptions) Table {
	rows := make([]Row, 0, len(s.groups))
	for _, g := range s.groups {
		r := s.row(g)
		if opts.Filter.keep(r) {
			rows = append(rows, r)
		}
	}
	if opts.SortBy != SortNone {
		slices.SortStableFunc(rows, func(a, b Row) int {
			c := compareRows(opts.SortBy, a, b)
			if opts.Descending {
				return -c
			}
			return c
		})
	}
	return Table{Rows: rows, Totals: totalize(rows)}
}

func (s *Store) row(g *Group) Row {
	opening, _ := s.resolve(Opening, g)
	reported, hasClosing := s.resolve(Closing, g)
	agg := g.Totals()
	r := Row{
		GroupID:    g.id,
		Name:       g.name,
		Opening:    opening,
		Debit:      agg.Debit,
		Credit:     agg.Credit,
		Calculated: opening.Add(agg.Debit).Sub(agg.Credit),
		Adjustment: g.adjustment,
		Note:       g.note,
		Reported:   reported,
	}
	r.Difference = r.Calculated.Add(r.Adjustment).Sub(r.Reported)
	switch {
	case !hasClosing:
		r.Status = StatusMissingClosing
	case r.HasDifference():
		r.Status = StatusDifference
	default:
		r.Status = StatusOK
	}
	return r
}

func compareRows(f SortField, a, b Row) int {
	switch f {
	case SortName:
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortOpening:
		return a.Opening.Cmp(b.Opening)
	case SortDebit:
		return a.Debit.Cmp(b.Debit)
	case SortCredit:
		return a.Credit.Cmp(b.Credit)
	case SortCalculated:
		return a.Calculated.Cmp(b.Calculated)
	case SortAdjustment:
		return a.Adjustment.Cmp(b.Adjustment)
	case SortReported:
		return a.Reported.Cmp(b.Reported)
	case SortDifference:
		return a.Difference.Cmp(b.Difference)
	case SortStatus:
		return cmp.Compare(a.Status, b.Status)
	default:
		return 0
	}
}

func totalize(rows []Row) Totals {
	var t Totals
	for _, r := range rows {
		t.Opening = t.Opening.Add(r.Opening)
		t.Debit = t.Debit.Add(r.Debit)
		t.Credit = t.Credit.Add(r.Credit)
		t.Calculated = t.Calculated.Add(r.Calculated)
		t.Adjustment = t.Adjustment.Add(r.Adjustment)
		t.Reported = t.Reported.Add(r.Reported)
		t.Difference = t.Difference.Add(r.Difference)
	}
	return t
}
