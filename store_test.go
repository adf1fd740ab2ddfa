package reconcile

import (
	"errors"
	"slices"
	"testing"
)

func TestNewStore(t *testing.T) {
	s := acmeStore(t)
	if got := len(s.Groups()); got != 2 {
		t.Fatalf("len(Groups()) = %d, want 2", got)
	}
	acme := mustGroup(t, s, "ACME SA")
	if got := acme.Totals(); !got.Balance.Equal(A(600)) || got.Count != 2 {
		t.Errorf("ACME SA totals = %+v, want balance 600 and 2 records", got)
	}
	if got := acme.Variants(); !slices.Equal(got, []string{"ACME SA"}) {
		t.Errorf("Variants() = %q, want [ACME SA]", got)
	}
	if acme.ID() == mustGroup(t, s, "Beta SRL").ID() {
		t.Errorf("two groups share the same id %q", acme.ID())
	}
	checkInvariants(t, s, allRecords...)
}

func TestNewStore_Rejects(t *testing.T) {
	testCases := []struct {
		name    string
		p       Partition
		wantErr error
	}{
		{
			name:    "negative debit",
			p:       Partition{Unassigned: []Record{rec("r1", -1, 0)}},
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "negative credit",
			p:       Partition{Groups: []PartitionGroup{{Name: "A", Records: []Record{rec("r1", 0, -5)}}}},
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "missing id",
			p:       Partition{Unassigned: []Record{rec("", 1, 0)}},
			wantErr: ErrInvalidRecord,
		},
		{
			name: "duplicate id across containers",
			p: Partition{
				Groups:     []PartitionGroup{{Name: "A", Records: []Record{rec("r1", 1, 0)}}},
				Unassigned: []Record{rec("r1", 2, 0)},
			},
			wantErr: ErrDuplicateRecord,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewStore(tc.p)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("NewStore() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewStore_DropsEmptyGroups(t *testing.T) {
	s := newTestStore(t, Partition{Groups: []PartitionGroup{{Name: "Empty"}, {Name: "A", Records: []Record{rec("r1", 1, 0)}}}})
	if got := len(s.Groups()); got != 1 {
		t.Errorf("len(Groups()) = %d, want 1", got)
	}
}

func TestMergeGroups(t *testing.T) {
	s := acmeStore(t)
	acme, beta := mustGroup(t, s, "ACME SA"), mustGroup(t, s, "Beta SRL")
	wantBalance := acme.Totals().Balance.Add(beta.Totals().Balance)
	wantCount := acme.Len() + beta.Len()
	s.SetBalance(Opening, acme.ID(), A(100))
	s.SetBalance(Opening, beta.ID(), A(20))
	s.SetBalance(Closing, beta.ID(), A(5))
	s.SetAdjustment(string(acme.ID()), A(1), "rounding")
	s.SetAdjustment(string(beta.ID()), A(2), "fx")

	if !s.MergeGroups(acme.ID(), beta.ID()) {
		t.Fatalf("MergeGroups() = false, want true")
	}

	if s.Group(beta.ID()) != nil {
		t.Errorf("source group still exists after merge")
	}
	merged := s.Group(acme.ID())
	if got := merged.Totals(); !got.Balance.Equal(wantBalance) || got.Count != wantCount {
		t.Errorf("merged totals = %+v, want balance %v and %d records", got, wantBalance, wantCount)
	}
	if got := merged.Variants(); !slices.Equal(got, []string{"ACME SA", "Beta SRL"}) {
		t.Errorf("Variants() = %q, want [ACME SA Beta SRL]", got)
	}
	if got, ok := merged.Opening(); !ok || !got.Equal(A(120)) {
		t.Errorf("Opening() = %v, %v, want 120, true", got, ok)
	}
	if got, ok := merged.Closing(); !ok || !got.Equal(A(5)) {
		t.Errorf("Closing() = %v, %v, want 5, true", got, ok)
	}
	if got, note := merged.Adjustment(); !got.Equal(A(3)) || note != "rounding; fx" {
		t.Errorf("Adjustment() = %v, %q, want 3, %q", got, note, "rounding; fx")
	}
	checkInvariants(t, s, allRecords...)
}

func TestMergeGroups_VariantsAreDeduplicated(t *testing.T) {
	s := newTestStore(t, Partition{Groups: []PartitionGroup{
		{Name: "ACME SA", Variants: []string{"Acme"}, Records: []Record{rec("r1", 1, 0)}},
		{Name: "Acme", Variants: []string{"ACME SA", "acme"}, Records: []Record{rec("r2", 1, 0)}},
	}})
	a, b := mustGroup(t, s, "ACME SA"), mustGroup(t, s, "Acme")
	s.MergeGroups(a.ID(), b.ID())
	if got := s.Group(a.ID()).Variants(); !slices.Equal(got, []string{"ACME SA", "Acme", "acme"}) {
		t.Errorf("Variants() = %q, want [ACME SA Acme acme]", got)
	}
}

func TestMergeGroups_NoOp(t *testing.T) {
	s := acmeStore(t)
	acme := mustGroup(t, s, "ACME SA")
	before := s.Snapshot()

	for _, tc := range []struct{ target, source GroupID }{
		{acme.ID(), acme.ID()},
		{acme.ID(), "missing"},
		{"missing", acme.ID()},
		{acme.ID(), Unassigned},
	} {
		if s.MergeGroups(tc.target, tc.source) {
			t.Errorf("MergeGroups(%q, %q) = true, want false", tc.target, tc.source)
		}
	}
	assertSnapshotEqual(t, before, s.Snapshot())
}

func TestMoveRecord(t *testing.T) {
	s := acmeStore(t)
	acme, beta := mustGroup(t, s, "ACME SA"), mustGroup(t, s, "Beta SRL")

	if !s.MoveRecord("r2", acme.ID(), Unassigned) {
		t.Fatalf("MoveRecord(r2 -> pool) = false")
	}
	if got := acme.Totals(); !got.Balance.Equal(A(1000)) || got.Count != 1 {
		t.Errorf("ACME SA totals = %+v, want balance 1000, 1 record", got)
	}
	if got := s.UnassignedTotals(); !got.Balance.Equal(A(-380)) || got.Count != 3 {
		t.Errorf("pool totals = %+v, want balance -380, 3 records", got)
	}

	if !s.MoveRecord("r4", Unassigned, beta.ID()) {
		t.Fatalf("MoveRecord(r4 -> Beta) = false")
	}
	if got := beta.Totals(); !got.Balance.Equal(A(250)) {
		t.Errorf("Beta SRL balance = %v, want 250", got.Balance)
	}
	if where, _ := s.Locate("r4"); where != beta.ID() {
		t.Errorf("Locate(r4) = %q, want %q", where, beta.ID())
	}
	checkInvariants(t, s, allRecords...)
}

func TestMoveRecord_EmptiedGroupIsDeleted(t *testing.T) {
	s := acmeStore(t)
	beta := mustGroup(t, s, "Beta SRL")

	if !s.MoveRecord("r3", beta.ID(), Unassigned) {
		t.Fatalf("MoveRecord() = false")
	}
	if s.Group(beta.ID()) != nil {
		t.Fatalf("emptied group was not deleted")
	}

	// Moving the record back needs a destination group: the old one is gone
	// and no phantom comes back.
	if s.MoveRecord("r3", Unassigned, beta.ID()) {
		t.Errorf("MoveRecord() into a deleted group = true, want false")
	}
	acme := mustGroup(t, s, "ACME SA")
	if !s.MoveRecord("r3", Unassigned, acme.ID()) {
		t.Errorf("MoveRecord() = false")
	}
	if got := len(s.Groups()); got != 1 {
		t.Errorf("len(Groups()) = %d, want 1", got)
	}
	checkInvariants(t, s, allRecords...)
}

func TestMoveRecord_NoOp(t *testing.T) {
	s := acmeStore(t)
	acme, beta := mustGroup(t, s, "ACME SA"), mustGroup(t, s, "Beta SRL")
	before := s.Snapshot()

	testCases := []struct {
		name     string
		record   string
		from, to GroupID
	}{
		{"not in stated origin", "r3", acme.ID(), Unassigned},
		{"unknown record", "r99", acme.ID(), beta.ID()},
		{"unknown origin", "r1", "missing", beta.ID()},
		{"unknown destination", "r1", acme.ID(), "missing"},
		{"same container", "r1", acme.ID(), acme.ID()},
		{"pool to pool", "r4", Unassigned, Unassigned},
	}
	for _, tc := range testCases {
		if s.MoveRecord(tc.record, tc.from, tc.to) {
			t.Errorf("%s: MoveRecord() = true, want false", tc.name)
		}
	}
	assertSnapshotEqual(t, before, s.Snapshot())
}

func TestMoveRecords(t *testing.T) {
	s := acmeStore(t)
	acme, beta := mustGroup(t, s, "ACME SA"), mustGroup(t, s, "Beta SRL")

	// r3 is not in ACME SA and is skipped.
	if got := s.MoveRecords(acme.ID(), beta.ID(), []string{"r1", "r3"}); got != 1 {
		t.Fatalf("MoveRecords() = %d, want 1", got)
	}
	if got := beta.Totals(); !got.Debit.Equal(A(1200)) || got.Count != 2 {
		t.Errorf("Beta SRL totals = %+v, want debit 1200, 2 records", got)
	}

	if got := s.MoveRecords(Unassigned, acme.ID(), []string{"r4", "r5"}); got != 2 {
		t.Fatalf("MoveRecords() = %d, want 2", got)
	}
	if got := s.UnassignedTotals(); got.Count != 0 || !got.Balance.IsZero() {
		t.Errorf("pool totals = %+v, want empty", got)
	}

	// Emptying a group in a batch deletes it.
	if got := s.MoveRecords(acme.ID(), beta.ID(), []string{"r2", "r4", "r5"}); got != 3 {
		t.Fatalf("MoveRecords() = %d, want 3", got)
	}
	if s.Group(acme.ID()) != nil {
		t.Errorf("emptied group was not deleted")
	}
	if got := beta.Totals(); !got.Balance.Equal(A(820)) || got.Count != 5 {
		t.Errorf("Beta SRL totals = %+v, want balance 820, 5 records", got)
	}
	checkInvariants(t, s, allRecords...)
}

func TestCreateGroup(t *testing.T) {
	s := acmeStore(t)
	id := s.CreateGroup("ACME SA")
	g := s.Group(id)
	if g == nil {
		t.Fatalf("Group(%q) = nil", id)
	}
	if g.Len() != 0 || !g.Totals().Balance.IsZero() {
		t.Errorf("new group is not empty: %+v", g.Totals())
	}
	if got := g.Variants(); !slices.Equal(got, []string{"ACME SA"}) {
		t.Errorf("Variants() = %q, want [ACME SA]", got)
	}
	// duplicate display names are tolerated.
	if got := len(s.FindGroups("acme s.a.")); got != 2 {
		t.Errorf("len(FindGroups()) = %d, want 2", got)
	}
	// a created group stays until a move empties it.
	if !s.MoveRecord("r4", Unassigned, id) || !s.MoveRecord("r4", id, Unassigned) {
		t.Fatalf("MoveRecord() = false")
	}
	if s.Group(id) != nil {
		t.Errorf("emptied group was not deleted")
	}
}

func TestRenameGroup(t *testing.T) {
	s := acmeStore(t)
	beta := mustGroup(t, s, "Beta SRL")
	if !s.RenameGroup(beta.ID(), "BETA S.R.L.") {
		t.Fatalf("RenameGroup() = false")
	}
	if got := beta.Variants(); !slices.Equal(got, []string{"Beta SRL", "BETA S.R.L."}) {
		t.Errorf("Variants() = %q", got)
	}
	if s.RenameGroup(beta.ID(), "  ") {
		t.Errorf("RenameGroup() with a blank name = true, want false")
	}
}

func TestMutationSequencesKeepInvariants(t *testing.T) {
	s := acmeStore(t)
	acme, beta := mustGroup(t, s, "ACME SA").ID(), mustGroup(t, s, "Beta SRL").ID()
	gamma := s.CreateGroup("Gamma")

	steps := []func(){
		func() { s.MoveRecords(Unassigned, gamma, []string{"r4", "r5"}) },
		func() { s.MoveRecord("r1", acme, gamma) },
		func() { s.MergeGroups(beta, gamma) },
		func() { s.MoveRecords(beta, Unassigned, []string{"r3", "r4"}) },
		func() { s.MoveRecord("r2", acme, beta) }, // empties ACME SA
		func() { s.MoveRecords(Unassigned, beta, []string{"r3", "r4"}) },
		func() { s.MoveRecord("r1", gamma, acme) }, // both gone: no-op
	}
	for i, step := range steps {
		step()
		t.Logf("after step %d", i)
		checkInvariants(t, s, allRecords...)
	}
	if got := len(s.Groups()); got != 1 {
		t.Errorf("len(Groups()) = %d, want 1", got)
	}
	if got := s.Statistics().Balance; !got.Equal(A(820)) {
		t.Errorf("overall balance = %v, want 820", got)
	}
}

func TestClear(t *testing.T) {
	s := acmeStore(t)
	s.LoadBalances(Opening, []BalanceEntry{{Name: "ACME SA", Balance: A(1)}})
	s.Clear()
	if st := s.Statistics(); st.Records != 0 || st.Groups != 0 || st.Opening != 0 {
		t.Errorf("Statistics() after Clear() = %+v, want empty", st)
	}
}
