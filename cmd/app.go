// Package cmd implements the recon command-line application.
//
// Every command works on a single workpaper file: it loads it, runs one
// operation of the reconciliation engine and, if the operation changes the
// state, saves it back.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/logger"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "workpaper")
	c.Register(&balancesCmd{}, "workpaper")
	c.Register(&exportCmd{}, "workpaper")
	c.Register(&clearCmd{}, "workpaper")

	c.Register(&groupsCmd{}, "groups")
	c.Register(&groupCmd{}, "groups")
	c.Register(&unassignedCmd{}, "groups")
	c.Register(&createCmd{}, "groups")
	c.Register(&renameCmd{}, "groups")
	c.Register(&mergeCmd{}, "groups")
	c.Register(&moveCmd{}, "groups")
	c.Register(&suggestCmd{}, "groups")

	c.Register(&tableCmd{}, "reconciliation")
	c.Register(&unmatchedCmd{}, "reconciliation")
	c.Register(&assignBalanceCmd{}, "reconciliation")
	c.Register(&setBalanceCmd{}, "reconciliation")
	c.Register(&adjustCmd{}, "reconciliation")
	c.Register(&statsCmd{}, "reconciliation")

	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	workpaperFile   = flag.String("w", envOr(EnvWorkpaper, "workpaper.json"), "Path to the workpaper file holding the reconciliation state")
	defaultCurrency = flag.String("currency", envOr(EnvCurrency, "ARS"), "ISO code of the currency used to display amounts")
	Verbose         = flag.Bool("v", os.Getenv(EnvVerbose) == "true", "Log every operation, including the ignored ones")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadStore loads the workpaper. A workpaper that does not exist yet is an
// empty reconciliation.
func loadStore(ctx context.Context) (*reconcile.Store, error) {
	log := logger.WithFields(logger.FromContext(ctx), map[string]any{"workpaper": *workpaperFile})
	s, err := reconcile.LoadWorkpaper(*workpaperFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Msg("workpaper does not exist, starting an empty one")
		s, err = reconcile.NewStore(reconcile.Partition{})
	}
	if err != nil {
		return nil, err
	}
	s.SetLogger(log)
	return s, nil
}

// saveStore saves the workpaper.
func saveStore(s *reconcile.Store) error {
	return reconcile.SaveWorkpaper(*workpaperFile, s)
}

// failf reports an error on stderr and returns the failure status.
func failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// usagef reports a misuse of the command line.
func usagef(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

// resolveGroup finds a group by id, by a unique id prefix of at least four
// characters, as printed by the groups command, or by name.
func resolveGroup(s *reconcile.Store, ref string) (*reconcile.Group, error) {
	if g := s.Lookup(ref); g != nil {
		return g, nil
	}
	var found []*reconcile.Group
	if len(ref) >= 4 {
		for _, g := range s.Groups() {
			if strings.HasPrefix(string(g.ID()), ref) {
				found = append(found, g)
			}
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no group %q", ref)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("group id prefix %q is ambiguous, it matches %d groups", ref, len(found))
	}
}

// unassignedRef designates the unassigned pool on the command line.
const unassignedRef = "-"

// resolveContainer is resolveGroup that also accepts "-" for the unassigned pool.
func resolveContainer(s *reconcile.Store, ref string) (reconcile.GroupID, error) {
	if ref == unassignedRef {
		return reconcile.Unassigned, nil
	}
	g, err := resolveGroup(s, ref)
	if err != nil {
		return reconcile.Unassigned, err
	}
	return g.ID(), nil
}

// printMarkdown renders md for the terminal. Output that is not a terminal
// gets the markdown source.
func printMarkdown(md string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
