package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/reconcile/date"
)

var (
	// ErrInvalidRecord is returned at ingestion for records that break the ledger invariants.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDuplicateRecord is returned at ingestion when two records share an id.
	ErrDuplicateRecord = errors.New("duplicate record id")
	// ErrDuplicateGroup is returned by Restore when two groups share an id.
	ErrDuplicateGroup = errors.New("duplicate group id")
)

// Record is one ledger movement.
//
// A Record lives in exactly one container at a time: a Group or the
// unassigned pool. Records are relocated, never destroyed.
type Record struct {
	ID           string
	Date         date.Date
	Description  string
	Debit        Amount // never negative
	Credit       Amount // never negative
	Counterparty string // counterparty hint as found in the source, not normalized
}

// Balance returns Debit - Credit.
func (r Record) Balance() Amount { return r.Debit.Sub(r.Credit) }

// Validate checks the record invariants. It is meant for the ingestion boundary:
// the Store mutations assume well-formed records.
func (r Record) Validate() error {
	var errs error
	if r.ID == "" {
		errs = errors.Join(errs, fmt.Errorf("%w: missing id", ErrInvalidRecord))
	}
	if r.Debit.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("%w %q: negative debit %v", ErrInvalidRecord, r.ID, r.Debit))
	}
	if r.Credit.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("%w %q: negative credit %v", ErrInvalidRecord, r.ID, r.Credit))
	}
	return errs
}

func (r Record) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.Append("id", r.ID)
	w.Optional("date", r.Date)
	w.Optional("description", r.Description)
	w.Append("debit", r.Debit)
	w.Append("credit", r.Credit)
	w.Optional("counterparty", r.Counterparty)
	return w.MarshalJSON()
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var temp struct {
		ID           string    `json:"id"`
		Date         date.Date `json:"date"`
		Description  string    `json:"description"`
		Debit        Amount    `json:"debit"`
		Credit       Amount    `json:"credit"`
		Counterparty string    `json:"counterparty"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	*r = Record(temp)
	return nil
}

// Aggregates are the sums over a set of records.
type Aggregates struct {
	Debit   Amount
	Credit  Amount
	Balance Amount // Debit - Credit
	Count   int
}

// Aggregate computes the aggregates of records.
//
// This is the only way aggregates are produced: containers recompute them
// from their records after every change, never from a delta.
func Aggregate(records []Record) Aggregates {
	var agg Aggregates
	for _, r := range records {
		agg.Debit = agg.Debit.Add(r.Debit)
		agg.Credit = agg.Credit.Add(r.Credit)
	}
	agg.Balance = agg.Debit.Sub(agg.Credit)
	agg.Count = len(records)
	return agg
}
