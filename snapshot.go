package reconcile

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// GroupSnapshot is the persisted form of a Group.
type GroupSnapshot struct {
	ID         GroupID
	Name       string
	Variants   []string
	Records    []Record
	Opening    *Amount // explicit opening balance, nil if not set
	Closing    *Amount // explicit closing balance, nil if not set
	Adjustment Amount
	Note       string
}

func (g GroupSnapshot) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.Append("id", g.ID)
	w.Append("name", g.Name)
	w.Optional("variants", g.Variants)
	w.Optional("opening", g.Opening)
	w.Optional("closing", g.Closing)
	w.Optional("adjustment", g.Adjustment)
	w.Optional("note", g.Note)
	w.List("records", g.Records)
	return w.MarshalJSON()
}

func (g *GroupSnapshot) UnmarshalJSON(b []byte) error {
	var temp struct {
		ID         GroupID  `json:"id"`
		Name       string   `json:"name"`
		Variants   []string `json:"variants"`
		Records    []Record `json:"records"`
		Opening    *Amount  `json:"opening"`
		Closing    *Amount  `json:"closing"`
		Adjustment Amount   `json:"adjustment"`
		Note       string   `json:"note"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	*g = GroupSnapshot(temp)
	return nil
}

// Snapshot is the full state of a Store, as exchanged with persistence.
type Snapshot struct {
	Groups     []GroupSnapshot
	Unassigned []Record
	Opening    []BalanceEntry
	Closing    []BalanceEntry
	Extras     map[string]map[string]string
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.List("groups", s.Groups)
	w.List("unassigned", s.Unassigned)
	w.List("opening", s.Opening)
	w.List("closing", s.Closing)
	w.Optional("extras", s.Extras)
	return w.MarshalJSON()
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var temp struct {
		Groups     []GroupSnapshot              `json:"groups"`
		Unassigned []Record                     `json:"unassigned"`
		Opening    []BalanceEntry               `json:"opening"`
		Closing    []BalanceEntry               `json:"closing"`
		Extras     map[string]map[string]string `json:"extras"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	*s = Snapshot(temp)
	return nil
}

// Snapshot returns a copy of the full state of the store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Unassigned: slices.Clone(s.unassigned),
		Opening:    slices.Clone(s.opening),
		Closing:    slices.Clone(s.closing),
		Extras:     cloneExtras(s.extras),
	}
	for _, g := range s.groups {
		gs := GroupSnapshot{
			ID:         g.id,
			Name:       g.name,
			Variants:   slices.Clone(g.variants),
			Records:    slices.Clone(g.records),
			Adjustment: g.adjustment,
			Note:       g.note,
		}
		if g.opening.set {
			v := g.opening.value
			gs.Opening = &v
		}
		if g.closing.set {
			v := g.closing.value
			gs.Closing = &v
		}
		snap.Groups = append(snap.Groups, gs)
	}
	return snap
}

// Restore creates a Store from a snapshot. The snapshot is the whole state:
// there is no partial load.
//
// Records are validated as in NewStore. Group ids are kept and must be
// unique; a group without id gets a new one. Unlike NewStore, empty groups are kept.
func Restore(snap Snapshot) (*Store, error) {
	p := Partition{Unassigned: snap.Unassigned}
	for _, gs := range snap.Groups {
		p.Groups = append(p.Groups, PartitionGroup{Name: gs.Name, Records: gs.Records})
	}
	if err := checkRecords(p); err != nil {
		return nil, err
	}
	ids := make(map[GroupID]bool)
	for _, gs := range snap.Groups {
		if gs.ID == "" {
			continue
		}
		if ids[gs.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGroup, gs.ID)
		}
		ids[gs.ID] = true
	}

	s := &Store{log: zerolog.Nop()}
	for _, gs := range snap.Groups {
		g := &Group{
			id:         gs.ID,
			name:       gs.Name,
			records:    slices.Clone(gs.Records),
			adjustment: gs.Adjustment,
			note:       gs.Note,
		}
		if g.id == "" {
			g.id = newGroupID()
		}
		g.addVariants(gs.Name)
		g.addVariants(gs.Variants...)
		if gs.Opening != nil {
			g.opening = override{value: *gs.Opening, set: true}
		}
		if gs.Closing != nil {
			g.closing = override{value: *gs.Closing, set: true}
		}
		g.recompute()
		s.groups = append(s.groups, g)
	}
	s.unassigned = slices.Clone(snap.Unassigned)
	s.poolAgg = Aggregate(s.unassigned)
	s.opening = slices.Clone(snap.Opening)
	s.closing = slices.Clone(snap.Closing)
	s.extras = cloneExtras(snap.Extras)
	return s, nil
}
