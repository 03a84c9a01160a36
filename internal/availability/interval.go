// Package availability implements the date-range model behind listing
// calendars: half-open booking intervals, the per-listing index of
// blocked dates and the per-listing locks that serialize availability
// checks against concurrent writes.
package availability

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a requested date range is inverted
// or zero-length.  Such ranges are rejected before any index lookup.
var ErrInvalidRange = errors.New("check-in must be before check-out")

// Interval is a half-open date range [CheckIn, CheckOut) at day
// granularity.  Both endpoints are normalized to UTC midnight, so two
// intervals that merely touch at a boundary never overlap: a guest may
// check in on the same day another checks out.
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates a timestamp to UTC midnight.  All interval arithmetic
// happens at day granularity; comparing raw timestamps invites
// off-by-one results when inputs carry a time of day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewInterval builds a day-granular interval from the given check-in
// and check-out.  It returns ErrInvalidRange when the normalized range
// would be empty or inverted.
func NewInterval(checkIn, checkOut time.Time) (Interval, error) {
	in, out := Day(checkIn), Day(checkOut)
	if !in.Before(out) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{CheckIn: in, CheckOut: out}, nil
}

// Overlaps reports whether two half-open intervals share at least one
// day: a.CheckIn < b.CheckOut && b.CheckIn < a.CheckOut.  This closed
// form is the only overlap test used anywhere; enumerating days to
// detect overlap is both slower and a source of boundary bugs.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(iv.CheckOut)
}

// Nights returns the number of nights the interval spans.
func (iv Interval) Nights() int {
	return int(iv.CheckOut.Sub(iv.CheckIn) / (24 * time.Hour))
}

// EachDay calls fn for every calendar day in the interval, in order,
// starting at CheckIn and stopping before CheckOut.  Iteration stops
// early when fn returns false.  The walk is restartable: calling
// EachDay again begins from CheckIn.
func (iv Interval) EachDay(fn func(time.Time) bool) {
	for d := iv.CheckIn; d.Before(iv.CheckOut); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}

// Days materializes the interval's blocked days into a slice.  It is
// meant for presentation (calendar rendering), not for overlap tests.
func (iv Interval) Days() []time.Time {
	out := make([]time.Time, 0, iv.Nights())
	iv.EachDay(func(d time.Time) bool {
		out = append(out, d)
		return true
	})
	return out
}
