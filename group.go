package reconcile

import (
	"slices"

	"github.com/google/uuid"
)

// GroupID identifies a Group. It is generated at creation and never derived from the name.
type GroupID string

// Unassigned designates the pool of records that belong to no group.
const Unassigned GroupID = ""

// newGroupID generates group identifiers.
var newGroupID = func() GroupID { return GroupID(uuid.NewString()) }

// override is an optional amount explicitly attached to a group.
type override struct {
	value Amount
	set   bool
}

// balance returns the explicit balance of that kind.
func (g *Group) balance(kind BalanceKind) *override {
	if kind == Closing {
		return &g.closing
	}
	return &g.opening
}

// Group is a named bucket of records representing one counterparty.
//
// Groups are owned and mutated by a Store; callers only read them.
type Group struct {
	id       GroupID
	name     string
	variants []string
	records  []Record
	agg      Aggregates

	opening    override
	closing    override
	adjustment Amount
	note       string
}

func newGroup(name string, records []Record) *Group {
	g := &Group{
		id:      newGroupID(),
		name:    name,
		records: records,
	}
	g.addVariants(name)
	g.recompute()
	return g
}

// ID returns the stable identifier of the group.
func (g *Group) ID() GroupID { return g.id }

// Name returns the display name.
func (g *Group) Name() string { return g.name }

// Variants returns the alternate spellings absorbed by the group, display name first.
func (g *Group) Variants() []string { return slices.Clone(g.variants) }

// Records returns a copy of the group's records.
func (g *Group) Records() []Record { return slices.Clone(g.records) }

// Totals returns the aggregates over the group's current records.
func (g *Group) Totals() Aggregates { return g.agg }

// Len returns the number of records in the group.
func (g *Group) Len() int { return len(g.records) }

// Opening returns the explicit opening balance, if any.
func (g *Group) Opening() (Amount, bool) { return g.opening.value, g.opening.set }

// Closing returns the explicit closing balance, if any.
func (g *Group) Closing() (Amount, bool) { return g.closing.value, g.closing.set }

// Adjustment returns the audit adjustment and its note.
func (g *Group) Adjustment() (Amount, string) { return g.adjustment, g.note }

// names returns the display name and every variant, used for name matching.
func (g *Group) names() []string {
	names := make([]string, 0, len(g.variants)+1)
	names = append(names, g.name)
	for _, v := range g.variants {
		if v != g.name {
			names = append(names, v)
		}
	}
	return names
}

// matches reports whether name normalizes to the group's name or one of its variants.
func (g *Group) matches(name string) bool {
	key := Normalize(name)
	if key == "" {
		return false
	}
	for _, n := range g.names() {
		if Normalize(n) == key {
			return true
		}
	}
	return false
}

// addVariants appends the names not yet known, keeping their first-seen order.
// Comparison is case-sensitive, as typed.
func (g *Group) addVariants(names ...string) {
	for _, n := range names {
		if n == "" || slices.Contains(g.variants, n) {
			continue
		}
		g.variants = append(g.variants, n)
	}
}

// indexOf returns the position of the record with that id, or -1.
func (g *Group) indexOf(recordID string) int {
	return slices.IndexFunc(g.records, func(r Record) bool { return r.ID == recordID })
}

// recompute refreshes the aggregates from the records.
func (g *Group) recompute() { g.agg = Aggregate(g.records) }
