package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/ingest"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

type balancesCmd struct {
	kind  string
	clear bool
	paths ingest.JSONPaths
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "load, list or clear a balance listing" }
func (*balancesCmd) Usage() string {
	return `recon balances -kind <opening|closing> [-clear] [<listing.xlsx|listing.csv|listing.json>]

  Loads an opening or closing balance listing, replacing the previous one
  of that kind. Without a file, lists the entries loaded.

  Spreadsheets need a name ("Razón Social") and a balance ("Saldo") column.
  JSON documents are read with the -rows, -name and -balance JSONPath
  selectors.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "closing", "Kind of listing: opening or closing")
	f.BoolVar(&c.clear, "clear", false, "Remove every entry of that kind")
	f.StringVar(&c.paths.Rows, "rows", ingest.DefaultJSONPaths.Rows, "JSONPath of the entries in a JSON listing")
	f.StringVar(&c.paths.Name, "name", ingest.DefaultJSONPaths.Name, "JSONPath of the name within an entry")
	f.StringVar(&c.paths.Balance, "balance", ingest.DefaultJSONPaths.Balance, "JSONPath of the balance within an entry")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := reconcile.ParseBalanceKind(c.kind)
	if err != nil {
		return usagef("%v", err)
	}
	if f.NArg() > 1 || (c.clear && f.NArg() > 0) {
		return usagef("balances expects at most one listing, and none with -clear")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}

	switch {
	case c.clear:
		s.ClearBalances(kind)
		if err := saveStore(s); err != nil {
			return failf("cannot save workpaper: %v", err)
		}
		fmt.Printf("Cleared the %s balances.\n", kind)
	case f.NArg() == 0:
		printMarkdown(renderer.BalancesMarkdown(kind, s.Balances(kind), *defaultCurrency))
	default:
		entries, err := c.read(f.Arg(0))
		if err != nil {
			return failf("cannot read balances %q: %v", f.Arg(0), err)
		}
		s.LoadBalances(kind, entries)
		if err := saveStore(s); err != nil {
			return failf("cannot save workpaper: %v", err)
		}
		fmt.Printf("Loaded %d %s balance entries, %d unmatched.\n", len(entries), kind, len(s.UnmatchedBalances(kind)))
	}
	return subcommands.ExitSuccess
}

func (c *balancesCmd) read(filename string) ([]reconcile.BalanceEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return ingest.ReadBalancesJSON(file, c.paths)
	}
	format, err := ingest.DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	return ingest.ReadBalances(file, format)
}
