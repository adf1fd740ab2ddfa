package reconcile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Partition is the initial attribution of records to counterparties, as
// produced by the ingestion pass.
type Partition struct {
	Groups     []PartitionGroup
	Unassigned []Record
	// Extras holds source columns the engine does not interpret, by record id.
	Extras map[string]map[string]string
}

// PartitionGroup is one counterparty found by the ingestion pass.
type PartitionGroup struct {
	Name     string
	Variants []string
	Records  []Record
}

// Store owns the working set of a reconciliation: groups, unassigned
// records, opening and closing balance listings, and adjustments.
//
// A Store has a single owner. Every mutation runs to completion and leaves
// all aggregates recomputed, so any read that follows observes a consistent
// state. A Store is not safe for concurrent use.
//
// Operations that reference an unknown group, record or balance entry are
// no-ops: they report false (or zero) and change nothing.
type Store struct {
	groups     []*Group
	unassigned []Record
	poolAgg    Aggregates

	opening []BalanceEntry
	closing []BalanceEntry

	extras map[string]map[string]string

	log zerolog.Logger
}

// NewStore creates a Store seeded with a partition.
//
// This is the ingestion boundary: every record is validated and record ids
// must be unique across the partition. Partition groups without records are
// dropped.
func NewStore(p Partition) (*Store, error) {
	s := &Store{log: zerolog.Nop()}
	if err := checkRecords(p); err != nil {
		return nil, err
	}
	for _, pg := range p.Groups {
		if len(pg.Records) == 0 {
			continue
		}
		g := newGroup(pg.Name, slices.Clone(pg.Records))
		g.addVariants(pg.Variants...)
		s.groups = append(s.groups, g)
	}
	s.unassigned = slices.Clone(p.Unassigned)
	s.poolAgg = Aggregate(s.unassigned)
	s.extras = cloneExtras(p.Extras)
	return s, nil
}

// checkRecords validates all records of a partition and their id uniqueness.
func checkRecords(p Partition) error {
	var errs error
	seen := make(map[string]struct{})
	check := func(r Record) {
		if err := r.Validate(); err != nil {
			errs = errors.Join(errs, err)
			return
		}
		if _, exists := seen[r.ID]; exists {
			errs = errors.Join(errs, fmt.Errorf("%w: %q", ErrDuplicateRecord, r.ID))
			return
		}
		seen[r.ID] = struct{}{}
	}
	for _, g := range p.Groups {
		for _, r := range g.Records {
			check(r)
		}
	}
	for _, r := range p.Unassigned {
		check(r)
	}
	return errs
}

func cloneExtras(extras map[string]map[string]string) map[string]map[string]string {
	c := make(map[string]map[string]string, len(extras))
	for id, cols := range extras {
		c[id] = maps.Clone(cols)
	}
	return c
}

// SetLogger sets the logger used to trace ignored operations.
func (s *Store) SetLogger(log zerolog.Logger) { s.log = log }

// Groups returns the groups in order.
func (s *Store) Groups() []*Group { return slices.Clone(s.groups) }

// Group returns the group with that id, or nil.
func (s *Store) Group(id GroupID) *Group {
	if id == Unassigned {
		return nil
	}
	for _, g := range s.groups {
		if g.id == id {
			return g
		}
	}
	return nil
}

// FindGroups returns the groups whose name or variants normalize to the same key as name.
func (s *Store) FindGroups(name string) []*Group {
	var found []*Group
	for _, g := range s.groups {
		if g.matches(name) {
			found = append(found, g)
		}
	}
	return found
}

// Lookup returns the group identified by id or, failing that, the first
// group whose name matches under normalization. It returns nil if none match.
func (s *Store) Lookup(nameOrID string) *Group {
	if g := s.Group(GroupID(nameOrID)); g != nil {
		return g
	}
	if found := s.FindGroups(nameOrID); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Unassigned returns a copy of the records attached to no group.
func (s *Store) Unassigned() []Record { return slices.Clone(s.unassigned) }

// UnassignedTotals returns the aggregates over the unassigned pool.
func (s *Store) UnassignedTotals() Aggregates { return s.poolAgg }

// Extras returns the uninterpreted source columns of a record, or nil.
func (s *Store) Extras(recordID string) map[string]string {
	return maps.Clone(s.extras[recordID])
}

// Locate returns the container holding the record.
func (s *Store) Locate(recordID string) (GroupID, bool) {
	for _, g := range s.groups {
		if g.indexOf(recordID) >= 0 {
			return g.id, true
		}
	}
	if slices.ContainsFunc(s.unassigned, func(r Record) bool { return r.ID == recordID }) {
		return Unassigned, true
	}
	return Unassigned, false
}

// CreateGroup appends a new empty group and returns its id.
//
// Names are not required to be unique: the engine only ever identifies
// groups by id.
func (s *Store) CreateGroup(name string) GroupID {
	g := newGroup(name, nil)
	s.groups = append(s.groups, g)
	s.log.Debug().Str("group", string(g.id)).Str("name", name).Msg("group created")
	return g.id
}

// RenameGroup changes the display name of a group. The new name becomes a variant.
func (s *Store) RenameGroup(id GroupID, name string) bool {
	g := s.Group(id)
	if g == nil || strings.TrimSpace(name) == "" {
		s.log.Debug().Str("group", string(id)).Msg("rename ignored")
		return false
	}
	g.name = name
	g.addVariants(name)
	return true
}

// MergeGroups moves every record of source into target and deletes source.
//
// Variants are united and adjustments are summed. Opening and closing
// balances are summed too, see combine: the comparative totals do not change. It reports false, and does nothing, if either group is unknown
// or both ids are the same.
func (s *Store) MergeGroups(target, source GroupID) bool {
	t, src := s.Group(target), s.Group(source)
	if t == nil || src == nil || target == source {
		s.log.Debug().Str("target", string(target)).Str("source", string(source)).Msg("merge ignored")
		return false
	}
	opening, closing := s.combine(Opening, t, src), s.combine(Closing, t, src)
	t.records = append(t.records, src.records...)
	t.addVariants(src.names()...)
	t.opening, t.closing = opening, closing
	t.adjustment = t.adjustment.Add(src.adjustment)
	t.note = joinNotes(t.note, src.note)
	t.recompute()
	s.deleteGroup(source)
	s.log.Debug().Str("target", string(target)).Str("source", string(source)).Int("records", t.Len()).Msg("groups merged")
	return true
}

// combine sums the balances of that kind of two groups. Once either is
// explicit, the other contributes the balance it resolves to, listing
// included. Two groups resolved from the listing stay so.
func (s *Store) combine(kind BalanceKind, t, src *Group) override {
	if !t.balance(kind).set && !src.balance(kind).set {
		return override{}
	}
	a, _ := s.resolve(kind, t)
	b, _ := s.resolve(kind, src)
	return override{value: a.Add(b), set: true}
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "" || a == b:
		return a
	default:
		return a + "; " + b
	}
}

// MoveRecord moves one record from a container to another. Use Unassigned
// to designate the pool.
//
// The record is searched in from; if it is not there, or if to is an unknown
// group, MoveRecord reports false and does nothing. A group left without
// records is deleted.
func (s *Store) MoveRecord(recordID string, from, to GroupID) bool {
	return s.MoveRecords(from, to, []string{recordID}) == 1
}

// MoveRecords moves a batch of records from a container to another and
// returns how many were moved. Ids not found in from are skipped.
//
// Aggregates are recomputed once, after the whole batch is relocated.
func (s *Store) MoveRecords(from, to GroupID, recordIDs []string) int {
	if from == to {
		s.log.Debug().Str("container", string(from)).Msg("move ignored: same container")
		return 0
	}
	if to != Unassigned && s.Group(to) == nil {
		s.log.Debug().Str("to", string(to)).Msg("move ignored: unknown destination")
		return 0
	}
	origin, ok := s.records(from)
	if !ok {
		s.log.Debug().Str("from", string(from)).Msg("move ignored: unknown origin")
		return 0
	}

	ids := make(map[string]struct{}, len(recordIDs))
	for _, id := range recordIDs {
		ids[id] = struct{}{}
	}
	var kept, moved []Record
	for _, r := range origin {
		if _, ok := ids[r.ID]; ok {
			moved = append(moved, r)
		} else {
			kept = append(kept, r)
		}
	}
	if len(moved) == 0 {
		s.log.Debug().Str("from", string(from)).Strs("records", recordIDs).Msg("move ignored: records not in origin")
		return 0
	}

	s.setRecords(from, kept)
	dest, _ := s.records(to)
	s.setRecords(to, append(slices.Clone(dest), moved...))
	if from != Unassigned && len(kept) == 0 {
		s.deleteGroup(from)
	}
	s.log.Debug().Str("from", string(from)).Str("to", string(to)).Int("records", len(moved)).Msg("records moved")
	return len(moved)
}

// records returns the records of a container.
func (s *Store) records(id GroupID) ([]Record, bool) {
	if id == Unassigned {
		return s.unassigned, true
	}
	g := s.Group(id)
	if g == nil {
		return nil, false
	}
	return g.records, true
}

// setRecords replaces the records of a container and recomputes its aggregates.
func (s *Store) setRecords(id GroupID, records []Record) {
	if id == Unassigned {
		s.unassigned = records
		s.poolAgg = Aggregate(records)
		return
	}
	if g := s.Group(id); g != nil {
		g.records = records
		g.recompute()
	}
}

func (s *Store) deleteGroup(id GroupID) {
	s.groups = slices.DeleteFunc(s.groups, func(g *Group) bool { return g.id == id })
}

// Clear empties the working set: groups, records, balances and extras.
func (s *Store) Clear() {
	s.groups = nil
	s.unassigned = nil
	s.poolAgg = Aggregates{}
	s.opening = nil
	s.closing = nil
	s.extras = make(map[string]map[string]string)
}
