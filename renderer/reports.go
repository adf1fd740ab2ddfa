package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/reconcile"
)

// recordsView is a list of records with their totals.
type recordsView struct {
	Records []reconcile.Record
	Totals  reconcile.Aggregates
}

// UnassignedMarkdown renders the records of the unassigned pool.
func UnassignedMarkdown(s *reconcile.Store, currency string) string {
	return renderTemplate("unassigned.md", currency, recordsView{
		Records: s.Unassigned(),
		Totals:  s.UnassignedTotals(),
	})
}

type groupView struct {
	ID         reconcile.GroupID
	Name       string
	Variants   []string
	Records    []reconcile.Record
	Totals     reconcile.Aggregates
	Opening    *reconcile.Amount
	Closing    *reconcile.Amount
	Adjustment reconcile.Amount
	Note       string
}

// GroupMarkdown renders one group with its records.
func GroupMarkdown(g *reconcile.Group, currency string) string {
	v := groupView{
		ID:       g.ID(),
		Name:     g.Name(),
		Variants: g.Variants(),
		Records:  g.Records(),
		Totals:   g.Totals(),
	}
	if o, ok := g.Opening(); ok {
		v.Opening = &o
	}
	if c, ok := g.Closing(); ok {
		v.Closing = &c
	}
	v.Adjustment, v.Note = g.Adjustment()
	return renderTemplate("group.md", currency, v)
}

type groupRow struct {
	ID     reconcile.GroupID
	Name   string
	Totals reconcile.Aggregates
}

type groupsView struct {
	Groups     []groupRow
	Unassigned reconcile.Aggregates
	Total      reconcile.Aggregates
}

// GroupsMarkdown renders the list of groups and the unassigned pool totals.
func GroupsMarkdown(s *reconcile.Store, currency string) string {
	v := groupsView{Unassigned: s.UnassignedTotals()}
	v.Total = v.Unassigned
	for _, g := range s.Groups() {
		agg := g.Totals()
		v.Groups = append(v.Groups, groupRow{ID: g.ID(), Name: g.Name(), Totals: agg})
		v.Total.Debit = v.Total.Debit.Add(agg.Debit)
		v.Total.Credit = v.Total.Credit.Add(agg.Credit)
		v.Total.Count += agg.Count
	}
	v.Total.Balance = v.Total.Debit.Sub(v.Total.Credit)
	return renderTemplate("groups.md", currency, v)
}

type comparativeView struct {
	Table  reconcile.Table
	Filter string
	Notes  []reconcile.Row
}

// ComparativeMarkdown renders the comparative table, as computed with opts.
// Adjustment notes are listed under the table.
func ComparativeMarkdown(t reconcile.Table, opts reconcile.TableOptions, currency string) string {
	v := comparativeView{Table: t, Filter: describe(opts)}
	for _, r := range t.Rows {
		if r.Note != "" {
			v.Notes = append(v.Notes, r)
		}
	}
	return renderTemplate("comparative.md", currency, v)
}

// describe returns a sentence describing the filter and sort of opts, or ""
// for the default table.
func describe(opts reconcile.TableOptions) string {
	var parts []string
	if f := opts.Filter; f.Name != "" {
		parts = append(parts, fmt.Sprintf("name contains %q", f.Name))
	}
	if opts.Filter.Status != "" {
		parts = append(parts, fmt.Sprintf("status is %s", opts.Filter.Status))
	}
	if opts.Filter.OnlyDifferences {
		parts = append(parts, "only differences")
	}
	if opts.SortBy != reconcile.SortNone {
		order := "ascending"
		if opts.Descending {
			order = "descending"
		}
		parts = append(parts, fmt.Sprintf("sorted by %s, %s", opts.SortBy, order))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Showing " + strings.Join(parts, "; ") + "."
}

type balancesView struct {
	Title   string
	Entries []reconcile.BalanceEntry
	Total   reconcile.Amount
	Empty   string
}

func newBalancesView(title, empty string, entries []reconcile.BalanceEntry) balancesView {
	v := balancesView{Title: title, Entries: entries, Empty: empty}
	for _, e := range entries {
		v.Total = v.Total.Add(e.Balance)
	}
	return v
}

// BalancesMarkdown renders a balance listing.
func BalancesMarkdown(kind reconcile.BalanceKind, entries []reconcile.BalanceEntry, currency string) string {
	title := fmt.Sprintf("%s balances", titleCase(kind.String()))
	return renderTemplate("balances.md", currency, newBalancesView(title, "No balance entry loaded.", entries))
}

// UnmatchedMarkdown renders the balance entries no group claims.
func UnmatchedMarkdown(kind reconcile.BalanceKind, entries []reconcile.BalanceEntry, currency string) string {
	title := fmt.Sprintf("Unmatched %s balances", kind)
	return renderTemplate("balances.md", currency, newBalancesView(title, "Every balance entry is claimed by a group.", entries))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StatisticsMarkdown renders the statistics of the working set.
func StatisticsMarkdown(st reconcile.Statistics, currency string) string {
	return renderTemplate("statistics.md", currency, st)
}

type suggestionsView struct {
	Suggestions []reconcile.Suggestion
	Threshold   float64
}

// SuggestionsMarkdown renders merge suggestions found with threshold.
func SuggestionsMarkdown(suggestions []reconcile.Suggestion, threshold float64) string {
	return renderTemplate("suggestions.md", "", suggestionsView{Suggestions: suggestions, Threshold: threshold})
}
