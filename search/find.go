package search

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by Find when every window was examined without a
// qualifying record.
var ErrNotFound = errors.New("search: no matching record")

// Record is anything with a kickoff instant.
type Record interface {
	Kickoff() time.Time
}

// Fetch returns the candidate records of the month containing window. It is
// called once per examined window.
type Fetch[T Record] func(ctx context.Context, window time.Time) ([]T, error)

// Query describes a single search.
type Query[T Record] struct {
	Direction Direction
	Reference time.Time
	// MaxWindows is the number of additional months examined after the
	// reference month.
	MaxWindows int
	// Match filters candidates, e.g. to a single club. Nil accepts all.
	Match func(T) bool
}

// Find walks the windows of q in order and returns the first qualifying
// record. Fetch errors are returned immediately; a window without a
// qualifying record advances the search. When the windows are exhausted Find
// returns ErrNotFound.
func Find[T Record](ctx context.Context, q Query[T], fetch Fetch[T]) (T, error) {
	var zero T
	examined := 0
	for window := range Windows(q.Reference, q.Direction, q.MaxWindows) {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		examined++
		records, err := fetch(ctx, window)
		if err != nil {
			return zero, err
		}
		if rec, ok := pick(q, window, records); ok {
			return rec, nil
		}
	}
	return zero, errors.Wrapf(ErrNotFound, "%s from %s after %d windows", q.Direction, q.Reference.Format(time.DateOnly), examined)
}

func pick[T Record](q Query[T], window time.Time, records []T) (T, bool) {
	var zero T
	candidates := make([]T, 0, len(records))
	for _, r := range records {
		if q.Match != nil && !q.Match(r) {
			continue
		}
		k := r.Kickoff()
		switch q.Direction {
		case Exact:
			if !SameDay(q.Reference, k) {
				continue
			}
		case Forward:
			if !k.After(window) {
				continue
			}
		case Backward:
			if !k.Before(window) {
				continue
			}
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return zero, false
	}
	switch q.Direction {
	case Forward:
		slices.SortStableFunc(candidates, func(a, b T) int {
			return a.Kickoff().Compare(b.Kickoff())
		})
	case Backward:
		// later document order wins ties
		slices.Reverse(candidates)
		slices.SortStableFunc(candidates, func(a, b T) int {
			return b.Kickoff().Compare(a.Kickoff())
		})
	}
	return candidates[0], true
}
