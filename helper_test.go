package reconcile

import (
	"fmt"
	"testing"
)

// rec is a helper for test to create a record from floats.
func rec(id string, debit, credit float64) Record {
	return Record{ID: id, Description: "movement " + id, Debit: A(debit), Credit: A(credit)}
}

// newTestStore is a helper for test to create a store from a valid partition.
func newTestStore(t *testing.T, p Partition) *Store {
	t.Helper()
	s, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return s
}

// acmeStore returns a store with two groups and an unassigned pool:
//
//	ACME SA   r1 (1000/0) r2 (0/400)
//	Beta SRL  r3 (200/0)
//	pool      r4 (50/0) r5 (0/30)
func acmeStore(t *testing.T) *Store {
	t.Helper()
	return newTestStore(t, Partition{
		Groups: []PartitionGroup{
			{Name: "ACME SA", Records: []Record{rec("r1", 1000, 0), rec("r2", 0, 400)}},
			{Name: "Beta SRL", Records: []Record{rec("r3", 200, 0)}},
		},
		Unassigned: []Record{rec("r4", 50, 0), rec("r5", 0, 30)},
	})
}

// mustGroup returns the only group with that name.
func mustGroup(t *testing.T, s *Store, name string) *Group {
	t.Helper()
	var found *Group
	for _, g := range s.Groups() {
		if g.Name() == name {
			if found != nil {
				t.Fatalf("more than one group named %q", name)
			}
			found = g
		}
	}
	if found == nil {
		t.Fatalf("no group named %q", name)
	}
	return found
}

// checkInvariants asserts that aggregates match records and that every
// record in want lives in exactly one container.
func checkInvariants(t *testing.T, s *Store, want ...string) {
	t.Helper()
	seen := make(map[string]string)
	place := func(where string, records []Record) {
		for _, r := range records {
			if prev, dup := seen[r.ID]; dup {
				t.Errorf("record %q is both in %s and %s", r.ID, prev, where)
			}
			seen[r.ID] = where
		}
	}
	for _, g := range s.Groups() {
		if got, want := g.Totals(), Aggregate(g.Records()); !sameAggregates(got, want) {
			t.Errorf("group %q aggregates drifted: got %+v, want %+v", g.Name(), got, want)
		}
		place(fmt.Sprintf("group %q", g.Name()), g.Records())
	}
	if got, want := s.UnassignedTotals(), Aggregate(s.Unassigned()); !sameAggregates(got, want) {
		t.Errorf("pool aggregates drifted: got %+v, want %+v", got, want)
	}
	place("the pool", s.Unassigned())

	for _, id := range want {
		if _, ok := seen[id]; !ok {
			t.Errorf("record %q is in no container", id)
		}
	}
	if len(seen) != len(want) {
		t.Errorf("store holds %d records, want %d", len(seen), len(want))
	}
}

func sameAggregates(a, b Aggregates) bool {
	return a.Debit.Equal(b.Debit) && a.Credit.Equal(b.Credit) && a.Balance.Equal(b.Balance) && a.Count == b.Count
}

var allRecords = []string{"r1", "r2", "r3", "r4", "r5"}
