package search

import (
	"iter"
	"time"
)

// Direction selects how a search walks away from its reference instant.
type Direction int

const (
	// Exact looks only at the reference day.
	Exact Direction = iota
	// Forward looks for the earliest record after the reference.
	Forward
	// Backward looks for the latest record before the reference.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "exact"
	}
}

// Windows yields the reference instant of each month window a search
// examines: ref itself, then the first instant of the following month
// (Forward) or the last instant of the preceding month (Backward). Exact
// yields ref only. At most maxWindows+1 values are produced and no month is
// yielded twice. Month boundaries are computed in ref's location.
func Windows(ref time.Time, dir Direction, maxWindows int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if !yield(ref) || dir == Exact {
			return
		}
		cur := ref
		for i := 0; i < maxWindows; i++ {
			cur = advance(cur, dir)
			if !yield(cur) {
				return
			}
		}
	}
}

func advance(t time.Time, dir Direction) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	if dir == Forward {
		return first.AddDate(0, 1, 0)
	}
	return first.Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day in a's
// location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
