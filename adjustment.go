package reconcile

// SetAdjustment records the auditor's adjustment for a group, replacing any
// previous one.
//
// The group is looked up by id, then by normalized name, so a caller holding
// only the displayed name of a table row can use it. It reports false if no
// group matches.
func (s *Store) SetAdjustment(nameOrID string, amount Amount, note string) bool {
	g := s.Lookup(nameOrID)
	if g == nil {
		s.log.Debug().Str("group", nameOrID).Msg("adjustment ignored: no such group")
		return false
	}
	g.adjustment = amount
	g.note = note
	s.log.Debug().Str("group", string(g.id)).Stringer("amount", amount).Msg("adjustment set")
	return true
}

// ClearAdjustment removes the adjustment of a group.
func (s *Store) ClearAdjustment(nameOrID string) bool {
	return s.SetAdjustment(nameOrID, Amount{}, "")
}
