package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

type unmatchedCmd struct {
	kind string
}

func (*unmatchedCmd) Name() string     { return "unmatched" }
func (*unmatchedCmd) Synopsis() string { return "list the balance entries no group claims" }
func (*unmatchedCmd) Usage() string {
	return `recon unmatched [-kind <opening|closing>]

  Lists the balance entries whose name matches no group name or variant,
  even partially. Attribute them with assign-balance.
`
}

func (c *unmatchedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "closing", "Kind of listing: opening or closing")
}

func (c *unmatchedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := reconcile.ParseBalanceKind(c.kind)
	if err != nil {
		return usagef("%v", err)
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	printMarkdown(renderer.UnmatchedMarkdown(kind, s.UnmatchedBalances(kind), *defaultCurrency))
	return subcommands.ExitSuccess
}

type assignBalanceCmd struct {
	kind string
}

func (*assignBalanceCmd) Name() string     { return "assign-balance" }
func (*assignBalanceCmd) Synopsis() string { return "attribute a balance entry to a group" }
func (*assignBalanceCmd) Usage() string {
	return `recon assign-balance [-kind <opening|closing>] <entry name> <group>

  Adds the balance of the entry named exactly <entry name> to the group's
  balance, and removes the entry from the listing.
`
}

func (c *assignBalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "closing", "Kind of listing: opening or closing")
}

func (c *assignBalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := reconcile.ParseBalanceKind(c.kind)
	if err != nil {
		return usagef("%v", err)
	}
	if f.NArg() != 2 {
		return usagef("assign-balance expects an entry name and a group")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	g, err := resolveGroup(s, f.Arg(1))
	if err != nil {
		return failf("%v", err)
	}
	if !s.ReassignBalance(kind, f.Arg(0), g.ID()) {
		return failf("no %s balance entry named %q", kind, f.Arg(0))
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Assigned the %s balance of %q to %q.\n", kind, f.Arg(0), g.Name())
	return subcommands.ExitSuccess
}

type setBalanceCmd struct {
	kind string
}

func (*setBalanceCmd) Name() string     { return "set-balance" }
func (*setBalanceCmd) Synopsis() string { return "set the balance of a group explicitly" }
func (*setBalanceCmd) Usage() string {
	return `recon set-balance [-kind <opening|closing>] <group> <amount>

  Sets the opening or closing balance of a group, overriding the balance
  listing for it.
`
}

func (c *setBalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "closing", "Kind of balance: opening or closing")
}

func (c *setBalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := reconcile.ParseBalanceKind(c.kind)
	if err != nil {
		return usagef("%v", err)
	}
	if f.NArg() != 2 {
		return usagef("set-balance expects a group and an amount")
	}
	amount, err := reconcile.ParseAmount(f.Arg(1))
	if err != nil {
		return usagef("%v", err)
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	g, err := resolveGroup(s, f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	s.SetBalance(kind, g.ID(), amount)
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Set the %s balance of %q to %s.\n", kind, g.Name(), amount.Format(*defaultCurrency))
	return subcommands.ExitSuccess
}

type adjustCmd struct {
	note  string
	clear bool
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "record an adjustment for a group" }
func (*adjustCmd) Usage() string {
	return `recon adjust [-note <text>] <group> <amount>
recon adjust -clear <group>

  Records the auditor's adjustment for a group, replacing the previous one.
  The adjustment is added to the calculated balance before comparing it with
  the reported one.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.note, "note", "", "Explanation of the adjustment")
	f.BoolVar(&c.clear, "clear", false, "Remove the adjustment")
}

func (c *adjustCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	want := 2
	if c.clear {
		want = 1
	}
	if f.NArg() != want {
		return usagef("adjust expects a group and an amount, or -clear and a group")
	}
	var amount reconcile.Amount
	if !c.clear {
		var err error
		if amount, err = reconcile.ParseAmount(f.Arg(1)); err != nil {
			return usagef("%v", err)
		}
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	g, err := resolveGroup(s, f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	if c.clear {
		s.ClearAdjustment(string(g.ID()))
	} else {
		s.SetAdjustment(string(g.ID()), amount, c.note)
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	if c.clear {
		fmt.Printf("Cleared the adjustment of %q.\n", g.Name())
	} else {
		fmt.Printf("Adjusted %q by %s.\n", g.Name(), amount.Format(*defaultCurrency))
	}
	return subcommands.ExitSuccess
}
