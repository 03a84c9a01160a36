package availability

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed per-listing interval set, sorted by
// check-in the way the repository query does.
type stubSource struct {
	intervals map[uint64][]Interval
	err       error
}

func (s *stubSource) ActiveIntervals(_ context.Context, listingID uint64) ([]Interval, error) {
	if s.err != nil {
		return nil, s.err
	}
	ivs := append([]Interval(nil), s.intervals[listingID]...)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].CheckIn.Before(ivs[j].CheckIn) })
	return ivs, nil
}

func TestIndex_IsAvailable(t *testing.T) {
	src := &stubSource{intervals: map[uint64][]Interval{
		1: {
			mustInterval(t, date(2024, 6, 1), date(2024, 6, 5)),
			mustInterval(t, date(2024, 6, 10), date(2024, 6, 12)),
		},
	}}
	idx := NewIndex(src)
	ctx := context.Background()

	// Listing with no bookings at all is vacuously available.
	free, err := idx.IsAvailable(ctx, 99, mustInterval(t, date(2024, 6, 1), date(2024, 6, 30)))
	require.NoError(t, err)
	require.True(t, free)

	// Gap between the two bookings.
	free, err = idx.IsAvailable(ctx, 1, mustInterval(t, date(2024, 6, 5), date(2024, 6, 10)))
	require.NoError(t, err)
	require.True(t, free)

	// Overlapping the first booking.
	free, err = idx.IsAvailable(ctx, 1, mustInterval(t, date(2024, 6, 4), date(2024, 6, 6)))
	require.NoError(t, err)
	require.False(t, free)

	// A range touching a booking's check-out day is free: the departing
	// guest leaves that morning.
	free, err = idx.IsAvailable(ctx, 1, mustInterval(t, date(2024, 6, 12), date(2024, 6, 15)))
	require.NoError(t, err)
	require.True(t, free)
}

func TestIndex_IsAvailable_SourceError(t *testing.T) {
	boom := errors.New("db down")
	idx := NewIndex(&stubSource{err: boom})

	_, err := idx.IsAvailable(context.Background(), 1, mustInterval(t, date(2024, 6, 1), date(2024, 6, 2)))
	require.ErrorIs(t, err, boom)
}

func TestIndex_BlockedDates_DedupesAndSorts(t *testing.T) {
	// Two intervals sharing June 3rd: the union must list it once.
	src := &stubSource{intervals: map[uint64][]Interval{
		1: {
			mustInterval(t, date(2024, 6, 3), date(2024, 6, 5)),
			mustInterval(t, date(2024, 6, 1), date(2024, 6, 4)),
		},
	}}
	idx := NewIndex(src)

	days, err := idx.BlockedDates(context.Background(), 1, true)
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		date(2024, 6, 1),
		date(2024, 6, 2),
		date(2024, 6, 3),
		date(2024, 6, 4),
	}, days)
}

func TestIndex_BlockedDates_EmptyListing(t *testing.T) {
	idx := NewIndex(&stubSource{intervals: map[uint64][]Interval{}})

	days, err := idx.BlockedDates(context.Background(), 7, true)
	require.NoError(t, err)
	require.Empty(t, days)
}
