package availability

import (
	"context"
	"sort"
	"time"
)

// IntervalSource loads the active intervals for a listing, ordered by
// check-in date.  An interval is active while its booking is PENDING
// or CONFIRMED; cancelled and completed bookings do not appear.  The
// repository layer implements this against the bookings table.
type IntervalSource interface {
	ActiveIntervals(ctx context.Context, listingID uint64) ([]Interval, error)
}

// Index answers availability questions for listings by consulting an
// IntervalSource.  It holds no state of its own: the active-interval
// set is derived from booking statuses on every call, so a cancel or
// confirm is visible to the next query without cache invalidation.
type Index struct {
	src IntervalSource
}

// NewIndex returns an Index reading from the given source.
func NewIndex(src IntervalSource) *Index {
	return &Index{src: src}
}

// IsAvailable reports whether no active interval for the listing
// overlaps the candidate range.  A listing with no bookings at all is
// vacuously available.  Intervals arrive sorted by check-in, so the
// scan stops at the first interval starting on or after the
// candidate's check-out: nothing later can overlap.
func (x *Index) IsAvailable(ctx context.Context, listingID uint64, candidate Interval) (bool, error) {
	intervals, err := x.src.ActiveIntervals(ctx, listingID)
	if err != nil {
		return false, err
	}
	return !overlapsAny(intervals, candidate), nil
}

// BlockedDates returns the union of all active intervals' days for a
// listing.  Days covered by more than one interval appear once.  The
// result is sorted when asSorted is true, otherwise map order applies.
func (x *Index) BlockedDates(ctx context.Context, listingID uint64, asSorted bool) ([]time.Time, error) {
	intervals, err := x.src.ActiveIntervals(ctx, listingID)
	if err != nil {
		return nil, err
	}
	set := make(map[time.Time]struct{})
	for _, iv := range intervals {
		iv.EachDay(func(d time.Time) bool {
			set[d] = struct{}{}
			return true
		})
	}
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	if asSorted {
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	}
	return out, nil
}

// ActiveIntervals exposes the underlying ordered interval list.
func (x *Index) ActiveIntervals(ctx context.Context, listingID uint64) ([]Interval, error) {
	return x.src.ActiveIntervals(ctx, listingID)
}

// overlapsAny scans a check-in-ordered interval list for an overlap
// with the candidate.  It relies on the ordering to short-circuit.
func overlapsAny(sorted []Interval, candidate Interval) bool {
	for _, iv := range sorted {
		if !iv.CheckIn.Before(candidate.CheckOut) {
			break
		}
		if iv.Overlaps(candidate) {
			return true
		}
	}
	return false
}
