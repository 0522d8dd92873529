// Package schedule holds the scheduling core: the wall-clock
// normalizer and the batch conflict validator.  Everything in this
// package is pure computation over time instants; persistence is
// reached only through the Store interface so the rules are testable
// without a database.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// LocalFormat is the canonical rendering of instants in all
// user-facing output (conflict messages, session listings).
const LocalFormat = "2006-01-02 15:04:05"

// inputLayouts are the only accepted shapes for incoming date strings.
// Anything else is rejected instead of being guessed at.
var inputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Clock converts between the cinema's wall-clock timezone and the UTC
// instants everything is stored and compared in.  All client-facing
// dates are wall-clock strings in the cinema's zone; the zone itself
// comes from configuration.
type Clock struct {
	loc *time.Location
}

// NewClock loads the named IANA zone (e.g. "Europe/Kyiv") and returns
// a Clock bound to it.
func NewClock(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Clock{loc: loc}, nil
}

// Location exposes the cinema's zone for callers that format on their own.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Normalize parses a wall-clock date string in the cinema's zone and
// returns the corresponding UTC instant.  Only the two supported
// layouts are accepted; everything else fails with ErrMalformedDate.
func (c *Clock) Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
}

// NormalizeBound parses a query-window bound.  A bare date (no time
// part) is completed to the start or the end of that local day before
// normalizing, so "?start_date=2025-03-01" covers the whole day.
func (c *Clock) NormalizeBound(raw string, endOfDay bool) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "T") && !strings.Contains(s, ":") {
		if endOfDay {
			s += " 23:59:59"
		} else {
			s += " 00:00:00"
		}
	}
	return c.Normalize(s)
}

// FormatLocal renders a UTC instant as a wall-clock string in the
// cinema's zone using LocalFormat.
func (c *Clock) FormatLocal(t time.Time) string {
	return t.In(c.loc).Format(LocalFormat)
}
