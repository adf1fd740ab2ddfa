package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/reconcile/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show the user manual" }
func (*topicCmd) Usage() string {
	return `recon topic [-list] [<topic>...]

Show the given topics of the user manual, "*" for all of them. Without
topic, show the manual's index.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list the topics with their summary")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.Topics()
		if err != nil {
			return failf("cannot read the manual index: %v", err)
		}
		var b strings.Builder
		b.WriteString("| Topic | Summary |\n|---|---|\n")
		for _, t := range topics {
			fmt.Fprintf(&b, "| %s | %s |\n", t.Name, t.Summary)
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}
	content, err := docs.ReadAll(topics...)
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(content)
	return subcommands.ExitSuccess
}
