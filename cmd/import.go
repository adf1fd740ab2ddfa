package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/date"
	"github.com/etnz/reconcile/ingest"
	"github.com/etnz/reconcile/logger"
	"github.com/google/subcommands"
)

type importCmd struct {
	period    string
	threshold float64
	force     bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "start a reconciliation from a ledger export" }
func (*importCmd) Usage() string {
	return `recon import [-range <from>..<to>] [-threshold <score>] [-f] <ledger.xlsx|ledger.csv>

  Reads a general-ledger export and groups its movements by counterparty.

  The first row of the file is the header. Debit ("Debe") and credit
  ("Haber") columns are required; date ("Fecha"), description ("Concepto",
  "Detalle") and counterparty ("Razón Social") are used when present. Other
  columns are kept with each movement.

  Movements whose description does not name a counterparty are left
  unassigned. The workpaper is replaced only with -f.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "range", "", "Keep only the movements dated in <from>..<to>, or in a year")
	f.Float64Var(&c.threshold, "threshold", ingest.DefaultThreshold, "Similarity score from which two counterparty names share a group")
	f.BoolVar(&c.force, "f", false, "Overwrite an existing workpaper")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usagef("import expects exactly one ledger file")
	}
	filename := f.Arg(0)
	rng, err := date.ParseRange(c.period)
	if err != nil {
		return usagef("%v", err)
	}
	if !c.force {
		if _, err := os.Stat(*workpaperFile); err == nil {
			return failf("workpaper %q already exists, use -f to overwrite it", *workpaperFile)
		}
	}

	format, err := ingest.DetectFormat(filename)
	if err != nil {
		return failf("%v", err)
	}
	file, err := os.Open(filename)
	if err != nil {
		return failf("cannot open ledger: %v", err)
	}
	defer file.Close()
	ledger, err := ingest.ReadLedger(file, format)
	if err != nil {
		return failf("cannot read ledger %q: %v", filename, err)
	}
	if !rng.IsZero() {
		ledger = ledger.Restrict(rng)
	}

	s, err := reconcile.NewStore(ledger.Partition(c.threshold))
	if err != nil {
		return failf("invalid ledger %q: %v", filename, err)
	}
	log := logger.FromContext(ctx)
	s.SetLogger(log)
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}

	st := s.Statistics()
	log.Debug().Str("ledger", filename).Str("range", rng.String()).Int("records", st.Records).Msg("ledger imported")
	fmt.Printf("Imported %d records into %d groups, %d unassigned.\n", st.Records, st.Groups, st.Unassigned)
	return subcommands.ExitSuccess
}
