package reconcile

// Statistics summarize the working set.
type Statistics struct {
	Records    int // all records
	Groups     int
	Assigned   int // records in a group
	Unassigned int // records in the pool
	Opening    int // opening balance entries not yet reassigned
	Closing    int // closing balance entries not yet reassigned

	// Totals over every record, assigned or not.
	Debit   Amount
	Credit  Amount
	Balance Amount
}

// Statistics computes the statistics of the working set.
func (s *Store) Statistics() Statistics {
	st := Statistics{
		Groups:     len(s.groups),
		Unassigned: len(s.unassigned),
		Opening:    len(s.opening),
		Closing:    len(s.closing),
	}
	aggs := []Aggregates{s.poolAgg}
	for _, g := range s.groups {
		st.Assigned += g.Len()
		aggs = append(aggs, g.Totals())
	}
	for _, a := range aggs {
		st.Debit = st.Debit.Add(a.Debit)
		st.Credit = st.Credit.Add(a.Credit)
	}
	st.Balance = st.Debit.Sub(st.Credit)
	st.Records = st.Assigned + st.Unassigned
	return st
}
