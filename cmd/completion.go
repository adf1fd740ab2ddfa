package cmd

import (
	"flag"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commands registered in c,
// with their flags. Groups are completed from the workpaper.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub: make(map[string]*complete.Command),
		Flags: map[string]complete.Predictor{
			"w":        predict.Files("*.json"),
			"currency": predict.Set{"ARS", "USD", "EUR"},
			"v":        predict.Nothing,
		},
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{
			Flags: make(map[string]complete.Predictor),
			Args:  predictArgs(cmd.Name()),
		}
		fs.VisitAll(func(fl *flag.Flag) { sub.Flags[fl.Name] = predictFlag(fl) })
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictFlag(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch fl.Name {
	case "kind":
		return predict.Set{reconcile.Opening.String(), reconcile.Closing.String()}
	case "status":
		return predict.Set{string(reconcile.StatusOK), string(reconcile.StatusDifference), string(reconcile.StatusMissingClosing)}
	case "sort":
		var fields predict.Set
		for f := reconcile.SortName; f <= reconcile.SortStatus; f++ {
			fields = append(fields, f.String())
		}
		return fields
	case "o":
		return predict.Files("*.xlsx")
	case "to", "from":
		return predictGroups
	default:
		return predict.Something
	}
}

func predictArgs(name string) complete.Predictor {
	switch name {
	case "import":
		return predict.Or(predict.Files("*.xlsx"), predict.Files("*.csv"))
	case "balances":
		return predict.Or(predict.Files("*.xlsx"), predict.Files("*.csv"), predict.Files("*.json"))
	case "group", "rename", "merge", "adjust", "set-balance", "assign-balance":
		return predictGroups
	case "topic":
		return predict.Set(append(docs.Names(), "*"))
	default:
		return predict.Nothing
	}
}

// predictGroups completes group names from the workpaper.
var predictGroups = complete.PredictFunc(func(prefix string) []string {
	s, err := reconcile.LoadWorkpaper(*workpaperFile)
	if err != nil {
		return nil
	}
	var names []string
	for _, g := range s.Groups() {
		names = append(names, g.Name())
	}
	return names
})
