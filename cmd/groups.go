package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

type groupsCmd struct{}

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "list the counterparty groups" }
func (*groupsCmd) Usage() string {
	return `recon groups

  Lists every group with its record count, debit, credit and balance, then
  the unassigned records and the grand total.
`
}

func (c *groupsCmd) SetFlags(f *flag.FlagSet) {}

func (c *groupsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	printMarkdown(renderer.GroupsMarkdown(s, *defaultCurrency))
	return subcommands.ExitSuccess
}

type groupCmd struct{}

func (*groupCmd) Name() string     { return "group" }
func (*groupCmd) Synopsis() string { return "show a group and its records" }
func (*groupCmd) Usage() string {
	return `recon group <group>

  Shows a group: its name variants, balances, adjustment and records.
  A group is designated by its name, its id or the start of its id.
`
}

func (c *groupCmd) SetFlags(f *flag.FlagSet) {}

func (c *groupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usagef("group expects exactly one group")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	g, err := resolveGroup(s, f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(renderer.GroupMarkdown(g, *defaultCurrency))
	return subcommands.ExitSuccess
}

type unassignedCmd struct{}

func (*unassignedCmd) Name() string     { return "unassigned" }
func (*unassignedCmd) Synopsis() string { return "list the records attached to no group" }
func (*unassignedCmd) Usage() string {
	return `recon unassigned

  Lists the records of the unassigned pool, with their totals.
`
}

func (c *unassignedCmd) SetFlags(f *flag.FlagSet) {}

func (c *unassignedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	printMarkdown(renderer.UnassignedMarkdown(s, *defaultCurrency))
	return subcommands.ExitSuccess
}

type createCmd struct{}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create an empty group" }
func (*createCmd) Usage() string {
	return `recon create <name>

  Creates an empty group, ready to receive records with move. Names need not
  be unique.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {}

func (c *createCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		return usagef("create expects a group name")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	id := s.CreateGroup(name)
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Created group %q (%s).\n", name, id)
	return subcommands.ExitSuccess
}

type renameCmd struct{}

func (*renameCmd) Name() string     { return "rename" }
func (*renameCmd) Synopsis() string { return "rename a group" }
func (*renameCmd) Usage() string {
	return `recon rename <group> <new name>

  Renames a group. The previous name is kept as a variant, so that balance
  entries keep matching it.
`
}

func (c *renameCmd) SetFlags(f *flag.FlagSet) {}

func (c *renameCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return usagef("rename expects a group and a new name")
	}
	name := strings.TrimSpace(strings.Join(f.Args()[1:], " "))
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	g, err := resolveGroup(s, f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	old := g.Name()
	if !s.RenameGroup(g.ID(), name) {
		return failf("cannot rename %q to %q", old, name)
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Renamed %q to %q.\n", old, name)
	return subcommands.ExitSuccess
}

type mergeCmd struct{}

func (*mergeCmd) Name() string     { return "merge" }
func (*mergeCmd) Synopsis() string { return "merge groups into one" }
func (*mergeCmd) Usage() string {
	return `recon merge <target> <source>...

  Moves every record of each source group into the target group, and deletes
  the sources. Names become variants of the target.
`
}

func (c *mergeCmd) SetFlags(f *flag.FlagSet) {}

func (c *mergeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return usagef("merge expects a target and at least one source group")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	target, err := resolveGroup(s, f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	// resolve every source before merging: a merged source no longer exists.
	var sources []*reconcile.Group
	for _, ref := range f.Args()[1:] {
		src, err := resolveGroup(s, ref)
		if err != nil {
			return failf("%v", err)
		}
		if src.ID() == target.ID() {
			return failf("cannot merge %q into itself", ref)
		}
		sources = append(sources, src)
	}
	merged := 0
	for _, src := range sources {
		if s.MergeGroups(target.ID(), src.ID()) {
			merged++
		}
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Merged %d groups into %q, now %d records.\n", merged, target.Name(), s.Group(target.ID()).Len())
	return subcommands.ExitSuccess
}

type moveCmd struct {
	from string
	to   string
}

func (*moveCmd) Name() string     { return "move" }
func (*moveCmd) Synopsis() string { return "move records between groups" }
func (*moveCmd) Usage() string {
	return `recon move -to <group|-> [-from <group|->] <record-id>...

  Moves records to another group, or to the unassigned pool with "-".
  Without -from, each record is taken from wherever it is. A group left
  without records is deleted.
`
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Destination group, or - for the unassigned pool")
	f.StringVar(&c.from, "from", "", "Source group, or - for the unassigned pool. Defaults to where each record is")
}

func (c *moveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" || f.NArg() == 0 {
		return usagef("move expects -to and at least one record id")
	}
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	to, err := resolveContainer(s, c.to)
	if err != nil {
		return failf("%v", err)
	}

	// batches of record ids, by source container, in first-seen order.
	var order []reconcile.GroupID
	batches := make(map[reconcile.GroupID][]string)
	for _, id := range f.Args() {
		from, found := reconcile.Unassigned, true
		if c.from != "" {
			from, err = resolveContainer(s, c.from)
			if err != nil {
				return failf("%v", err)
			}
		} else {
			from, found = s.Locate(id)
		}
		if !found {
			return failf("no record %q", id)
		}
		if _, ok := batches[from]; !ok {
			order = append(order, from)
		}
		batches[from] = append(batches[from], id)
	}

	moved := 0
	for _, from := range order {
		moved += s.MoveRecords(from, to, batches[from])
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Moved %d of %d records to %s.\n", moved, f.NArg(), containerName(s, to))
	return subcommands.ExitSuccess
}

// containerName names a group or the unassigned pool for messages.
func containerName(s *reconcile.Store, id reconcile.GroupID) string {
	if g := s.Group(id); g != nil {
		return fmt.Sprintf("%q", g.Name())
	}
	return "the unassigned pool"
}
