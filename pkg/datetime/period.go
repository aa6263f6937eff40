// Package datetime labels forecast periods, either by index or by calendar
// date relative to a start date.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date format accepted for a forecast start date and used
// for date-based period labels.
const DateLayout = "2006-01-02"

// Period units.
const (
	UnitIndex = "index"
	UnitDay   = "day"
	UnitWeek  = "week"
	UnitMonth = "month"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ValidUnit reports whether unit is a supported period unit.
func ValidUnit(unit string) bool {
	switch unit {
	case "", UnitIndex, UnitDay, UnitWeek, UnitMonth:
		return true
	}
	return false
}

// OffsetPeriod returns start moved forward by n periods of the given unit.
func OffsetPeriod(start time.Time, unit string, n int) (time.Time, error) {
	switch unit {
	case UnitDay:
		return start.AddDate(0, 0, n), nil
	case UnitWeek:
		return start.AddDate(0, 0, 7*n), nil
	case UnitMonth:
		return start.AddDate(0, n, 0), nil
	default:
		return start, fmt.Errorf("unsupported period unit %q", unit)
	}
}

// Labeler produces one label per 1-indexed forecast step.
type Labeler struct {
	unit  string
	start time.Time
}

// NewLabeler builds a Labeler. An empty or "index" unit yields "period_k"
// labels; calendar units require a start date in DateLayout.
func NewLabeler(unit, startDate string) (*Labeler, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if !ValidUnit(unit) {
		return nil, fmt.Errorf("unsupported period unit %q", unit)
	}
	if unit == "" || unit == UnitIndex {
		return &Labeler{unit: UnitIndex}, nil
	}
	if startDate == "" {
		return nil, fmt.Errorf("period unit %q requires a start date", unit)
	}
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	return &Labeler{unit: unit, start: start}, nil
}

// Label returns the label for forecast step k. Step 1 is the first period
// after the start date.
func (l *Labeler) Label(k int) string {
	if l == nil || l.unit == UnitIndex {
		return fmt.Sprintf("period_%d", k)
	}
	t, err := OffsetPeriod(l.start, l.unit, k)
	if err != nil {
		return fmt.Sprintf("period_%d", k)
	}
	return t.Format(DateLayout)
}
