package date

import (
	"fmt"
	"strings"
	"time"
)

// Range represents a range of dates. A zero bound is open.
type Range struct{ From, To Date }

// FiscalYear returns the range from January 1st to December 31st of year.
func FiscalYear(year int) Range {
	return Range{From: New(year, time.January, 1), To: New(year, time.December, 31)}
}

// Contains return true date is included in the range (boundaries included).
// Undated movements are always contained.
func (r Range) Contains(date Date) bool {
	if date.IsZero() {
		return true
	}
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// IsZero reports whether the range is open on both ends.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) String() string {
	if r.IsZero() {
		return "all dates"
	}
	return fmt.Sprintf("%s..%s", r.From, r.To)
}

// ParseRange parses "<from>..<to>" where either bound may be empty,
// or a four digit year for the whole fiscal year.
func ParseRange(str string) (Range, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Range{}, nil
	}
	if len(str) == 4 {
		var year int
		if _, err := fmt.Sscanf(str, "%d", &year); err == nil {
			return FiscalYear(year), nil
		}
	}
	from, to, ok := strings.Cut(str, "..")
	if !ok {
		return Range{}, fmt.Errorf("invalid range %q want <from>..<to> or a year", str)
	}
	var r Range
	var err error
	if r.From, err = Parse(from); err != nil {
		return Range{}, fmt.Errorf("invalid range start: %w", err)
	}
	if r.To, err = Parse(to); err != nil {
		return Range{}, fmt.Errorf("invalid range end: %w", err)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return Range{}, fmt.Errorf("invalid range %q: end is before start", str)
	}
	return r, nil
}
