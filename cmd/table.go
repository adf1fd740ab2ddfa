package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

// tableFlags are the filter and sort flags shared by table and export.
type tableFlags struct {
	name       string
	status     string
	diff       bool
	sortBy     string
	descending bool
}

func (c *tableFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Keep the groups whose name contains this text")
	f.StringVar(&c.status, "status", "", "Keep the rows of that status: ok, difference or missing-closing")
	f.BoolVar(&c.diff, "diff", false, "Keep the rows whose difference exceeds the tolerance")
	f.StringVar(&c.sortBy, "sort", "", "Sort by name, opening, debit, credit, calculated, adjustment, reported, difference or status")
	f.BoolVar(&c.descending, "desc", false, "Sort in descending order")
}

func (c *tableFlags) options() (reconcile.TableOptions, error) {
	status, err := reconcile.ParseStatus(c.status)
	if err != nil {
		return reconcile.TableOptions{}, err
	}
	sortBy, err := reconcile.ParseSortField(c.sortBy)
	if err != nil {
		return reconcile.TableOptions{}, err
	}
	return reconcile.TableOptions{
		Filter:     reconcile.Filter{Name: c.name, Status: status, OnlyDifferences: c.diff},
		SortBy:     sortBy,
		Descending: c.descending,
	}, nil
}

type tableCmd struct {
	tableFlags
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "display the comparative table" }
func (*tableCmd) Usage() string {
	return `recon table [-name <text>] [-status <status>] [-diff] [-sort <column> [-desc]]

  Compares, for every group, the balance calculated from the ledger with the
  reported closing balance:

    calculated = opening + debit - credit
    difference = calculated + adjustment - reported

  A row is "ok" when the difference is within 0.01, "missing-closing" when
  no closing balance is found for the group. Totals sum the rows shown.
`
}

func (c *tableCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	opts, err := c.options()
	if err != nil {
		return usagef("%v", err)
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	printMarkdown(renderer.ComparativeMarkdown(s.ComparativeTable(opts), opts, *defaultCurrency))
	return subcommands.ExitSuccess
}

type exportCmd struct {
	tableFlags
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the comparative table as a spreadsheet" }
func (*exportCmd) Usage() string {
	return `recon export -o <file.xlsx> [table flags]

  Writes the comparative table, with the same filter and sort flags as the
  table command, to a spreadsheet.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.tableFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "comparative.xlsx", "Spreadsheet to write")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	opts, err := c.options()
	if err != nil {
		return usagef("%v", err)
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	t := s.ComparativeTable(opts)

	file, err := os.Create(c.output)
	if err != nil {
		return failf("cannot create %q: %v", c.output, err)
	}
	if err := renderer.WriteComparativeXLSX(file, t); err != nil {
		file.Close()
		return failf("cannot export to %q: %v", c.output, err)
	}
	if err := file.Close(); err != nil {
		return failf("cannot export to %q: %v", c.output, err)
	}
	fmt.Printf("Exported %d rows to %s.\n", len(t.Rows), c.output)
	return subcommands.ExitSuccess
}
