package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/reconcile/cmd"
	"github.com/etnz/reconcile/logger"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// answers the shell and exits when invoked for completion.
	cmd.Completion(commander).Complete("recon")

	flag.Parse()
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}

	ctx := logger.WithContext(context.Background(), logger.New(*cmd.Verbose))
	os.Exit(int(commander.Execute(ctx)))
}

// registered reports whether name is a command of c.
func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, command subcommands.Command) {
		if command.Name() == name {
			found = true
		}
	})
	return found
}
