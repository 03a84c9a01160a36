package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustInterval(t *testing.T, in, out time.Time) Interval {
	t.Helper()
	iv, err := NewInterval(in, out)
	require.NoError(t, err)
	return iv
}

func TestNewInterval_RejectsInvalidRanges(t *testing.T) {
	// Inverted range.
	_, err := NewInterval(date(2024, 6, 5), date(2024, 6, 1))
	require.ErrorIs(t, err, ErrInvalidRange)

	// Zero-length range.
	_, err = NewInterval(date(2024, 6, 1), date(2024, 6, 1))
	require.ErrorIs(t, err, ErrInvalidRange)

	// Same calendar day at different times of day still normalizes to
	// an empty range.
	_, err = NewInterval(
		time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC),
	)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewInterval_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	iv, err := NewInterval(
		time.Date(2024, 6, 1, 14, 30, 0, 0, loc),
		time.Date(2024, 6, 5, 2, 0, 0, 0, loc),
	)
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 1), iv.CheckIn)
	// 02:00 UTC+3 on June 5 is still June 4 in UTC.
	require.Equal(t, date(2024, 6, 4), iv.CheckOut)
}

func TestOverlaps(t *testing.T) {
	base := mustInterval(t, date(2024, 6, 1), date(2024, 6, 5))

	cases := []struct {
		name string
		in   time.Time
		out  time.Time
		want bool
	}{
		{"identical", date(2024, 6, 1), date(2024, 6, 5), true},
		{"contained", date(2024, 6, 2), date(2024, 6, 4), true},
		{"containing", date(2024, 5, 30), date(2024, 6, 10), true},
		{"overlap tail", date(2024, 6, 4), date(2024, 6, 8), true},
		{"overlap head", date(2024, 5, 28), date(2024, 6, 2), true},
		{"single shared day", date(2024, 6, 4), date(2024, 6, 5), true},
		{"touches at check-out", date(2024, 6, 5), date(2024, 6, 7), false},
		{"touches at check-in", date(2024, 5, 28), date(2024, 6, 1), false},
		{"fully before", date(2024, 5, 1), date(2024, 5, 10), false},
		{"fully after", date(2024, 7, 1), date(2024, 7, 10), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustInterval(t, tc.in, tc.out)
			require.Equal(t, tc.want, base.Overlaps(other))
			// Overlap is symmetric.
			require.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestNights(t *testing.T) {
	require.Equal(t, 1, mustInterval(t, date(2024, 6, 1), date(2024, 6, 2)).Nights())
	require.Equal(t, 4, mustInterval(t, date(2024, 6, 1), date(2024, 6, 5)).Nights())
}

func TestDays_ExcludesCheckOut(t *testing.T) {
	iv := mustInterval(t, date(2024, 6, 1), date(2024, 6, 4))
	require.Equal(t, []time.Time{
		date(2024, 6, 1),
		date(2024, 6, 2),
		date(2024, 6, 3),
	}, iv.Days())
}

func TestEachDay_StopsEarlyAndRestarts(t *testing.T) {
	iv := mustInterval(t, date(2024, 6, 1), date(2024, 6, 10))

	var visited []time.Time
	iv.EachDay(func(d time.Time) bool {
		visited = append(visited, d)
		return len(visited) < 3
	})
	require.Equal(t, []time.Time{
		date(2024, 6, 1),
		date(2024, 6, 2),
		date(2024, 6, 3),
	}, visited)

	// A fresh walk begins again at check-in.
	var first time.Time
	iv.EachDay(func(d time.Time) bool {
		first = d
		return false
	})
	require.Equal(t, date(2024, 6, 1), first)
}
