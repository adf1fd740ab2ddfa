package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display statistics of the reconciliation" }
func (*statsCmd) Usage() string {
	return `recon stats

  Displays the record, group and balance entry counts, and the global debit,
  credit and balance.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	printMarkdown(renderer.StatisticsMarkdown(s.Statistics(), *defaultCurrency))
	return subcommands.ExitSuccess
}

type suggestCmd struct {
	threshold float64
	apply     bool
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest groups to merge" }
func (*suggestCmd) Usage() string {
	return `recon suggest [-threshold <score>] [-apply]

  Lists the pairs of groups whose names look alike, best first. With -apply,
  merges each pair, the group with more records absorbing the other.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.threshold, "threshold", 0.8, "Minimum similarity score, between 0 and 1")
	f.BoolVar(&c.apply, "apply", false, "Merge the suggested pairs")
}

func (c *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	suggestions := s.SuggestMerges(c.threshold)
	if !c.apply {
		printMarkdown(renderer.SuggestionsMarkdown(suggestions, c.threshold))
		return subcommands.ExitSuccess
	}

	// a group absorbed by an earlier merge is followed to its new target.
	into := make(map[reconcile.GroupID]reconcile.GroupID)
	follow := func(id reconcile.GroupID) reconcile.GroupID {
		for {
			next, ok := into[id]
			if !ok {
				return id
			}
			id = next
		}
	}
	merged := 0
	for _, sg := range suggestions {
		target, source := follow(sg.Target), follow(sg.Source)
		if s.MergeGroups(target, source) {
			into[source] = target
			merged++
		}
	}
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Merged %d groups, %d left.\n", merged, len(s.Groups()))
	return subcommands.ExitSuccess
}

type clearCmd struct{}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "empty the workpaper" }
func (*clearCmd) Usage() string {
	return `recon clear

  Removes every group, record, balance entry and adjustment from the
  workpaper.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadStore(ctx)
	if err != nil {
		return failf("cannot load workpaper: %v", err)
	}
	s.Clear()
	if err := saveStore(s); err != nil {
		return failf("cannot save workpaper: %v", err)
	}
	fmt.Printf("Cleared %s.\n", *workpaperFile)
	return subcommands.ExitSuccess
}
