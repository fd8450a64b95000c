package models

import "time"

// TimeRange is a closed interval [Start, End]. A zero Start or End leaves
// that side of the interval open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// All is the unbounded range.
var All = TimeRange{}

// Between returns the closed range [start, end]
func Between(start, end time.Time) TimeRange {
	return TimeRange{Start: start, End: end}
}

// IsZero reports whether the range is unbounded on both sides
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t lies within the range, bounds included
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
