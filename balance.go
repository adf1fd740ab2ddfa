package reconcile

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// BalanceKind tells an opening balance listing from a closing one.
type BalanceKind int

const (
	// Opening balances are reported at the start of the audited period.
	Opening BalanceKind = iota
	// Closing balances are reported at the end of the audited period.
	Closing
)

func (k BalanceKind) String() string {
	switch k {
	case Opening:
		return "opening"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// ParseBalanceKind parses "opening" or "closing".
func ParseBalanceKind(s string) (BalanceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opening", "open", "inicio":
		return Opening, nil
	case "closing", "close", "cierre":
		return Closing, nil
	default:
		return 0, fmt.Errorf("unknown balance kind: %q", s)
	}
}

// BalanceEntry is one row of a balance listing: a counterparty name as
// supplied, and its signed balance.
type BalanceEntry struct {
	Name    string
	Balance Amount
}

func (e BalanceEntry) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.Append("name", e.Name)
	w.Append("balance", e.Balance)
	return w.MarshalJSON()
}

func (e *BalanceEntry) UnmarshalJSON(b []byte) error {
	var temp struct {
		Name    string `json:"name"`
		Balance Amount `json:"balance"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	*e = BalanceEntry(temp)
	return nil
}

// pool returns the listing of that kind.
func (s *Store) pool(kind BalanceKind) *[]BalanceEntry {
	if kind == Closing {
		return &s.closing
	}
	return &s.opening
}

// LoadBalances replaces the whole listing of that kind.
func (s *Store) LoadBalances(kind BalanceKind, entries []BalanceEntry) {
	*s.pool(kind) = slices.Clone(entries)
	s.log.Debug().Stringer("kind", kind).Int("entries", len(entries)).Msg("balances loaded")
}

// ClearBalances empties the listing of that kind.
func (s *Store) ClearBalances(kind BalanceKind) { *s.pool(kind) = nil }

// Balances returns a copy of the listing of that kind.
func (s *Store) Balances(kind BalanceKind) []BalanceEntry { return slices.Clone(*s.pool(kind)) }

// ReassignBalance attributes a balance entry to a group.
//
// The first entry of that kind whose name is exactly rawName is removed from
// the listing and added to the group's balance of that kind, which becomes
// explicit. It reports false, and does nothing, if either the entry or the
// group does not exist.
func (s *Store) ReassignBalance(kind BalanceKind, rawName string, to GroupID) bool {
	g := s.Group(to)
	entries := s.pool(kind)
	i := slices.IndexFunc(*entries, func(e BalanceEntry) bool { return e.Name == rawName })
	if g == nil || i < 0 {
		s.log.Debug().Stringer("kind", kind).Str("name", rawName).Str("group", string(to)).Msg("reassign ignored")
		return false
	}
	entry := (*entries)[i]
	*entries = slices.Delete(*entries, i, i+1)
	// the balance the group had from the listing is kept in the explicit one.
	base, _ := s.resolve(kind, g)
	*g.balance(kind) = override{value: base.Add(entry.Balance), set: true}
	s.log.Debug().Stringer("kind", kind).Str("name", rawName).Str("group", string(to)).Msg("balance reassigned")
	return true
}

// UnmatchedBalances returns the entries of that kind that no group seems to claim.
//
// An entry is claimed when its normalized name equals, contains, or is
// contained in the normalized name (or a variant) of some group. The
// substring rule is a heuristic: short names may be claimed by mistake.
func (s *Store) UnmatchedBalances(kind BalanceKind) []BalanceEntry {
	var keys []string
	for _, g := range s.groups {
		for _, n := range g.names() {
			if k := Normalize(n); k != "" {
				keys = append(keys, k)
			}
		}
	}
	var unmatched []BalanceEntry
	for _, e := range *s.pool(kind) {
		key := Normalize(e.Name)
		claimed := key != "" && slices.ContainsFunc(keys, func(k string) bool {
			return k == key || strings.Contains(k, key) || strings.Contains(key, k)
		})
		if !claimed {
			unmatched = append(unmatched, e)
		}
	}
	return unmatched
}

// lookupBalance sums the entries of that kind whose name matches the group.
// found is false when no entry matches.
func (s *Store) lookupBalance(kind BalanceKind, g *Group) (sum Amount, found bool) {
	for _, e := range *s.pool(kind) {
		if g.matches(e.Name) {
			sum = sum.Add(e.Balance)
			found = true
		}
	}
	return sum, found
}

// resolve returns the explicit override if set, else the listing lookup.
func (s *Store) resolve(kind BalanceKind, g *Group) (Amount, bool) {
	if o := g.balance(kind); o.set {
		return o.value, true
	}
	return s.lookupBalance(kind, g)
}

// SetBalance sets the explicit opening or closing balance of a group,
// replacing any previous value.
func (s *Store) SetBalance(kind BalanceKind, id GroupID, balance Amount) bool {
	g := s.Group(id)
	if g == nil {
		s.log.Debug().Stringer("kind", kind).Str("group", string(id)).Msg("set balance ignored")
		return false
	}
	*g.balance(kind) = override{value: balance, set: true}
	s.log.Debug().Stringer("kind", kind).Str("group", string(id)).Stringer("balance", balance).Msg("balance set")
	return true
}
