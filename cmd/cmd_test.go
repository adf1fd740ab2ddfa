package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/reconcile"
	"github.com/google/subcommands"
)

const testLedger = `Fecha,Concepto,Debe,Haber,Razón Social
01/03/2024,Factura 0001,1500,0,Acme SA
05/03/2024,Cobro 0002,0,400,Acme S.A.
10/03/2024,Factura 0003,200,0,Beta SRL
12/03/2024,0001-00001234,0,30,
`

const testClosing = `Razón Social,Saldo
Acme S.A.,1100
Beta SRL,150
Gamma SA,75
`

// useWorkpaper points the commands to a fresh workpaper in a temporary
// folder, and returns that folder.
func useWorkpaper(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, "workpaper.json")
	old := workpaperFile
	workpaperFile = &filename
	t.Cleanup(func() { workpaperFile = old })
	return dir
}

// writeFile writes content in dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// run executes a command as the command line would.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: invalid arguments %q: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

func mustRun(t *testing.T, c subcommands.Command, args ...string) {
	t.Helper()
	if status := run(t, c, args...); status != subcommands.ExitSuccess {
		t.Fatalf("%s %q: got status %v, want success", c.Name(), args, status)
	}
}

func load(t *testing.T) *reconcile.Store {
	t.Helper()
	s, err := reconcile.LoadWorkpaper(*workpaperFile)
	if err != nil {
		t.Fatalf("LoadWorkpaper() failed: %v", err)
	}
	return s
}

// rows indexes the comparative table by group name.
func rows(s *reconcile.Store) map[string]reconcile.Row {
	m := make(map[string]reconcile.Row)
	for _, r := range s.ComparativeTable(reconcile.TableOptions{}).Rows {
		m[r.Name] = r
	}
	return m
}

func TestImport(t *testing.T) {
	dir := useWorkpaper(t)
	ledger := writeFile(t, dir, "ledger.csv", testLedger)

	mustRun(t, &importCmd{}, ledger)

	st := load(t).Statistics()
	if st.Records != 4 || st.Groups != 2 || st.Unassigned != 1 {
		t.Errorf("got %d records, %d groups, %d unassigned, want 4, 2, 1", st.Records, st.Groups, st.Unassigned)
	}

	if status := run(t, &importCmd{}, ledger); status != subcommands.ExitFailure {
		t.Errorf("import over an existing workpaper: got %v, want failure", status)
	}
	mustRun(t, &importCmd{}, "-f", "-range", "2024-03-01..2024-03-05", ledger)
	if got := load(t).Statistics().Records; got != 2 {
		t.Errorf("import -range: got %d records, want 2", got)
	}
}

func TestImportErrors(t *testing.T) {
	dir := useWorkpaper(t)
	testCases := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"no file", nil, subcommands.ExitUsageError},
		{"bad range", []string{"-range", "tomorrow", "ledger.csv"}, subcommands.ExitUsageError},
		{"unsupported format", []string{writeFile(t, dir, "ledger.pdf", "")}, subcommands.ExitFailure},
		{"missing file", []string{filepath.Join(dir, "missing.csv")}, subcommands.ExitFailure},
		{"missing column", []string{writeFile(t, dir, "bad.csv", "Fecha,Concepto\n01/03/2024,x\n")}, subcommands.ExitFailure},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(t, &importCmd{}, tc.args...); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
	if _, err := os.Stat(*workpaperFile); err == nil {
		t.Errorf("a failed import created the workpaper")
	}
}

func TestReconciliationWorkflow(t *testing.T) {
	dir := useWorkpaper(t)
	mustRun(t, &importCmd{}, writeFile(t, dir, "ledger.csv", testLedger))
	mustRun(t, &balancesCmd{}, "-kind", "closing", writeFile(t, dir, "closing.csv", testClosing))

	got := rows(load(t))
	if r := got["ACME SA"]; r.Status != reconcile.StatusOK {
		t.Errorf("ACME SA: got %s (difference %v), want ok", r.Status, r.Difference)
	}
	if r := got["BETA SRL"]; r.Status != reconcile.StatusDifference || !r.Difference.Equal(reconcile.A(50)) {
		t.Errorf("BETA SRL: got %s (difference %v), want difference of 50", r.Status, r.Difference)
	}
	if unmatched := load(t).UnmatchedBalances(reconcile.Closing); len(unmatched) != 1 || unmatched[0].Name != "Gamma SA" {
		t.Errorf("unmatched = %v, want Gamma SA", unmatched)
	}

	// explain Beta's difference.
	mustRun(t, &adjustCmd{}, "-note", "credit note pending", "Beta SRL", "-50")
	// attribute Gamma's balance to a new group holding the unassigned record.
	mustRun(t, &createCmd{}, "Gamma", "Hermanos")
	mustRun(t, &moveCmd{}, "-to", "Gamma Hermanos", "row-5")
	mustRun(t, &assignBalanceCmd{}, "Gamma SA", "Gamma Hermanos")

	s := load(t)
	got = rows(s)
	if r := got["BETA SRL"]; r.Status != reconcile.StatusOK || r.Note != "credit note pending" {
		t.Errorf("BETA SRL: got %s with note %q, want ok with the note", r.Status, r.Note)
	}
	if r := got["Gamma Hermanos"]; !r.Reported.Equal(reconcile.A(75)) || !r.Calculated.Equal(reconcile.A(-30)) {
		t.Errorf("Gamma Hermanos: reported %v calculated %v, want 75 and -30", r.Reported, r.Calculated)
	}
	if st := s.Statistics(); st.Unassigned != 0 || st.Closing != 2 {
		t.Errorf("got %d unassigned records and %d closing entries, want 0 and 2", st.Unassigned, st.Closing)
	}

	// back to the pool: the emptied group is deleted.
	mustRun(t, &moveCmd{}, "-to", "-", "row-5")
	if g, err := resolveGroup(load(t), "Gamma Hermanos"); err == nil {
		t.Errorf("emptied group %q still exists", g.Name())
	}

	mustRun(t, &adjustCmd{}, "-clear", "Beta SRL")
	if r := rows(load(t))["BETA SRL"]; !r.Adjustment.IsZero() || r.Note != "" {
		t.Errorf("BETA SRL adjustment after -clear: %v %q", r.Adjustment, r.Note)
	}

	mustRun(t, &clearCmd{})
	if st := load(t).Statistics(); st.Records != 0 || st.Groups != 0 || st.Closing != 0 {
		t.Errorf("after clear: %+v", st)
	}
}

func TestGroupCommands(t *testing.T) {
	dir := useWorkpaper(t)
	mustRun(t, &importCmd{}, writeFile(t, dir, "ledger.csv", testLedger))

	mustRun(t, &renameCmd{}, "Acme SA", "Acme", "Argentina")
	s := load(t)
	acme, err := resolveGroup(s, "ACME ARGENTINA")
	if err != nil {
		t.Fatalf("renamed group not found: %v", err)
	}
	if got := acme.Variants(); len(got) != 2 {
		t.Errorf("variants = %q, want the previous and new names", got)
	}

	mustRun(t, &setBalanceCmd{}, "-kind", "opening", string(acme.ID())[:8], "100")
	mustRun(t, &mergeCmd{}, "Acme Argentina", "Beta SRL")
	s = load(t)
	if got := len(s.Groups()); got != 1 {
		t.Fatalf("got %d groups after merge, want 1", got)
	}
	r := rows(s)["Acme Argentina"]
	if !r.Opening.Equal(reconcile.A(100)) || !r.Calculated.Equal(reconcile.A(1400)) {
		t.Errorf("merged row: opening %v calculated %v, want 100 and 1400", r.Opening, r.Calculated)
	}

	if status := run(t, &mergeCmd{}, "Acme Argentina", "Acme Argentina"); status != subcommands.ExitFailure {
		t.Errorf("merge into itself: got %v, want failure", status)
	}
	if status := run(t, &groupCmd{}, "nobody"); status != subcommands.ExitFailure {
		t.Errorf("unknown group: got %v, want failure", status)
	}
	if status := run(t, &moveCmd{}, "-to", "-", "row-99"); status != subcommands.ExitFailure {
		t.Errorf("unknown record: got %v, want failure", status)
	}
}

func TestSuggestApply(t *testing.T) {
	useWorkpaper(t)
	s, err := reconcile.NewStore(reconcile.Partition{Groups: []reconcile.PartitionGroup{
		{Name: "Lopez Martinez Construcciones", Records: []reconcile.Record{{ID: "r1", Debit: reconcile.A(1)}, {ID: "r2", Debit: reconcile.A(2)}}},
		{Name: "Lopez Martinez", Records: []reconcile.Record{{ID: "r3", Debit: reconcile.A(3)}}},
		{Name: "Zeta SA", Records: []reconcile.Record{{ID: "r4", Debit: reconcile.A(4)}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := saveStore(s); err != nil {
		t.Fatal(err)
	}

	mustRun(t, &suggestCmd{})
	mustRun(t, &suggestCmd{}, "-apply")
	groups := load(t).Groups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Name() != "Lopez Martinez Construcciones" || groups[0].Len() != 3 {
		t.Errorf("got %q with %d records, want the larger group to absorb the other", groups[0].Name(), groups[0].Len())
	}
}

func TestExport(t *testing.T) {
	dir := useWorkpaper(t)
	mustRun(t, &importCmd{}, writeFile(t, dir, "ledger.csv", testLedger))
	out := filepath.Join(dir, "out.xlsx")
	mustRun(t, &exportCmd{}, "-o", out, "-sort", "name")
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("export did not write %s: %v", out, err)
	}
	if status := run(t, &exportCmd{}, "-sort", "color"); status != subcommands.ExitUsageError {
		t.Errorf("unknown sort field: got %v, want usage error", status)
	}
}

func TestResolveGroup(t *testing.T) {
	s, err := reconcile.NewStore(reconcile.Partition{})
	if err != nil {
		t.Fatal(err)
	}
	id := s.CreateGroup("ACME SA")

	for _, ref := range []string{string(id), string(id)[:8], "Acme S.A."} {
		g, err := resolveGroup(s, ref)
		if err != nil || g.ID() != id {
			t.Errorf("resolveGroup(%q) = %v, %v, want %s", ref, g, err, id)
		}
	}
	if _, err := resolveGroup(s, string(id)[:3]); err == nil {
		t.Errorf("resolveGroup() accepted a three character prefix")
	}
	if got, err := resolveContainer(s, "-"); err != nil || got != reconcile.Unassigned {
		t.Errorf("resolveContainer(-) = %q, %v, want the unassigned pool", got, err)
	}
}

func TestCompletion(t *testing.T) {
	c := subcommands.NewCommander(flag.NewFlagSet("recon", flag.ContinueOnError), "recon")
	Register(c)
	root := Completion(c)

	for _, name := range []string{"import", "balances", "table", "merge", "topic"} {
		if _, ok := root.Sub[name]; !ok {
			t.Errorf("no completion for %q", name)
		}
	}
	table := root.Sub["table"]
	for _, fl := range []string{"name", "status", "diff", "sort", "desc"} {
		if _, ok := table.Flags[fl]; !ok {
			t.Errorf("no completion for table -%s", fl)
		}
	}
	sorts := table.Flags["sort"].Predict("")
	if !strings.Contains(strings.Join(sorts, " "), "difference") {
		t.Errorf("sort completion = %q, want the table columns", sorts)
	}
}
