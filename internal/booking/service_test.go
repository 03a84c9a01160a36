package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/model"
	"github.com/iliyamo/homestay-booking/internal/queue"
	"github.com/iliyamo/homestay-booking/internal/repository"
)

// fakeStore is an in-memory Store and ListingSource.  Every method is
// guarded by one mutex so the concurrency tests exercise the service's
// per-listing locking rather than data races inside the fake.
type fakeStore struct {
	mu       sync.Mutex
	nextID   uint64
	clock    time.Time
	bookings map[uint64]*model.Booking
	listings map[uint64]*model.Listing
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		bookings: map[uint64]*model.Booking{},
		listings: map[uint64]*model.Listing{},
	}
}

func (f *fakeStore) addListing(l model.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = &l
}

func (f *fakeStore) setCreatedAt(bookingID uint64, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[bookingID].CreatedAt = at
}

func (f *fakeStore) status(bookingID uint64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[bookingID].Status
}

func (f *fakeStore) ActiveIntervals(_ context.Context, listingID uint64) ([]availability.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []availability.Interval
	for _, b := range f.bookings {
		if b.ListingID == listingID && model.IsActiveStatus(b.Status) {
			out = append(out, availability.Interval{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (f *fakeStore) InsertBooking(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = f.clock
	b.UpdatedAt = f.clock
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) GetBookingWithHost(_ context.Context, id uint64) (*model.Booking, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, 0, repository.ErrBookingNotFound
	}
	l, ok := f.listings[b.ListingID]
	if !ok {
		return nil, 0, repository.ErrListingNotFound
	}
	cp := *b
	return &cp, l.HostID, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id uint64, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return false, repository.ErrBookingNotFound
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = f.clock
	return true, nil
}

func (f *fakeStore) FindPendingOlderThan(_ context.Context, cutoff time.Time) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.Status == model.StatusPending && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) summaries(match func(b *model.Booking, l *model.Listing) bool) []model.BookingSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BookingSummary
	for _, b := range f.bookings {
		l := f.listings[b.ListingID]
		if l == nil || !match(b, l) {
			continue
		}
		out = append(out, model.BookingSummary{
			ID:              b.ID,
			ListingID:       b.ListingID,
			ListingTitle:    l.Title,
			ListingCity:     l.City,
			GuestID:         b.GuestID,
			CheckIn:         b.CheckIn.Format("2006-01-02"),
			CheckOut:        b.CheckOut.Format("2006-01-02"),
			Status:          b.Status,
			GuestCount:      b.GuestCount,
			TotalPriceCents: b.TotalPriceCents,
			CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeStore) ListBookingsByHost(_ context.Context, hostID uint64) ([]model.BookingSummary, error) {
	return f.summaries(func(_ *model.Booking, l *model.Listing) bool { return l.HostID == hostID }), nil
}

func (f *fakeStore) ListBookingsByGuest(_ context.Context, guestID uint64) ([]model.BookingSummary, error) {
	return f.summaries(func(b *model.Booking, _ *model.Listing) bool { return b.GuestID == guestID }), nil
}

func (f *fakeStore) ListAllBookings(_ context.Context) ([]model.BookingSummary, error) {
	return f.summaries(func(*model.Booking, *model.Listing) bool { return true }), nil
}

func (f *fakeStore) GetListing(_ context.Context, id uint64) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

// fakeEvents records published status events.
type fakeEvents struct {
	mu     sync.Mutex
	err    error
	events []queue.BookingStatusEvent
}

func (f *fakeEvents) PublishBookingStatus(_ context.Context, ev queue.BookingStatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEvents) all() []queue.BookingStatusEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.BookingStatusEvent(nil), f.events...)
}

func newTestService() (*Service, *fakeStore, *fakeEvents) {
	store := newFakeStore()
	store.addListing(model.Listing{
		ID:            1,
		HostID:        testHostID,
		Title:         "Harbour loft",
		City:          "Porto",
		PricePerNight: 12000,
		MaxGuests:     4,
	})
	events := &fakeEvents{}
	return NewService(store, store, events, 24*time.Hour), store, events
}

func guestActor() Actor { return Actor{ID: testGuestID, Role: model.RoleGuest} }
func hostActor() Actor  { return Actor{ID: testHostID, Role: model.RoleHost} }

func TestRequestReservation_CreatesPendingBooking(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	require.NotZero(t, b.ID)
	require.Equal(t, model.StatusPending, b.Status)
	require.Equal(t, uint64(4*12000), b.TotalPriceCents)

	// The pending booking blocks its range immediately.
	free, err := svc.IsAvailable(ctx, 1,
		time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, free)

	// Creation alone publishes nothing.
	require.Empty(t, events.all())
}

func TestRequestReservation_Rejections(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	in := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	_, err := svc.RequestReservation(ctx, Actor{}, 1, in, out, 2)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.RequestReservation(ctx, guestActor(), 1, out, in, 2)
	require.ErrorIs(t, err, availability.ErrInvalidRange)

	_, err = svc.RequestReservation(ctx, guestActor(), 1, in, out, 0)
	require.ErrorIs(t, err, ErrInvalidGuestCount)

	_, err = svc.RequestReservation(ctx, guestActor(), 1, in, out, 5)
	require.ErrorIs(t, err, ErrInvalidGuestCount)

	_, err = svc.RequestReservation(ctx, guestActor(), 404, in, out, 2)
	require.ErrorIs(t, err, repository.ErrListingNotFound)
}

func TestRequestReservation_OverlapConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	// Overlapping range is refused.
	_, err = svc.RequestReservation(ctx, Actor{ID: 77, Role: model.RoleGuest}, 1,
		time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), 2)
	require.ErrorIs(t, err, repository.ErrConflict)

	// Checking in on the earlier booking's check-out day is fine.
	_, err = svc.RequestReservation(ctx, Actor{ID: 77, Role: model.RoleGuest}, 1,
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
}

func TestRequestReservation_ConcurrentOverlapAdmitsExactlyOne(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		guest := Actor{ID: uint64(100 + i), Role: model.RoleGuest}
		go func() {
			start.Wait()
			_, err := svc.RequestReservation(ctx, guest, 1,
				time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
			errs <- err
		}()
	}
	start.Done()

	var wins, conflicts int
	for i := 0; i < attempts; i++ {
		err := <-errs
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, attempts-1, conflicts)
}

func TestTransitionStatus_CancelReleasesDates(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	free, err := svc.IsAvailable(ctx, 1, b.CheckIn, b.CheckOut)
	require.NoError(t, err)
	require.False(t, free)

	cancelled, err := svc.TransitionStatus(ctx, guestActor(), b.ID, model.StatusCancelled, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, cancelled.Status)

	// The exact same range is bookable again.
	free, err = svc.IsAvailable(ctx, 1, b.CheckIn, b.CheckOut)
	require.NoError(t, err)
	require.True(t, free)

	evs := events.all()
	require.Len(t, evs, 1)
	require.Equal(t, model.StatusCancelled, evs[0].Status)
	require.Equal(t, model.RoleGuest, evs[0].Initiator)
	require.Equal(t, "Harbour loft", evs[0].ListingTitle)
}

func TestTransitionStatus_ConfirmThenComplete(t *testing.T) {
	svc, store, events := newTestService()
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	confirmed, err := svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusConfirmed, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, confirmed.Status)

	completed, err := svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusCompleted, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, completed.Status)
	require.Equal(t, model.StatusCompleted, store.status(b.ID))

	// Only the confirmation hits the broker; completion is silent.
	evs := events.all()
	require.Len(t, evs, 1)
	require.Equal(t, model.StatusConfirmed, evs[0].Status)

	// Terminal bookings no longer block their range.
	free, err := svc.IsAvailable(ctx, 1, b.CheckIn, b.CheckOut)
	require.NoError(t, err)
	require.True(t, free)
}

func TestTransitionStatus_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := svc.TransitionStatus(ctx, hostActor(), 999, model.StatusConfirmed, now)
	require.ErrorIs(t, err, repository.ErrBookingNotFound)

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	// A stranger gets an authorization error, not a validity verdict.
	_, err = svc.TransitionStatus(ctx, Actor{ID: 999, Role: model.RoleGuest}, b.ID, model.StatusConfirmed, now)
	require.ErrorIs(t, err, ErrUnauthorized)

	// Cancelling twice trips the terminal-state rule.
	_, err = svc.TransitionStatus(ctx, guestActor(), b.ID, model.StatusCancelled, now)
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusCancelled, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionStatus_PublishFailureDoesNotFail(t *testing.T) {
	svc, store, events := newTestService()
	events.err = errors.New("broker down")
	ctx := context.Background()

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusConfirmed, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, store.status(b.ID))
}

// stalledEvents blocks inside PublishBookingStatus until released,
// standing in for an unreachable broker mid-dial.
type stalledEvents struct {
	entered chan struct{}
	release chan struct{}
}

func (f *stalledEvents) PublishBookingStatus(context.Context, queue.BookingStatusEvent) error {
	close(f.entered)
	<-f.release
	return nil
}

func TestTransitionStatus_SlowPublisherDoesNotHoldListingLock(t *testing.T) {
	store := newFakeStore()
	store.addListing(model.Listing{ID: 1, HostID: testHostID, Title: "Harbour loft", PricePerNight: 12000, MaxGuests: 4})
	events := &stalledEvents{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(store, store, events, 24*time.Hour)
	ctx := context.Background()

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	transitioned := make(chan error, 1)
	go func() {
		_, err := svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusConfirmed, time.Now().UTC())
		transitioned <- err
	}()
	<-events.entered

	// With the publisher stuck, a new reservation on the same listing
	// must still go through: the lock was released before publishing.
	booked := make(chan error, 1)
	go func() {
		_, err := svc.RequestReservation(ctx, Actor{ID: 77, Role: model.RoleGuest}, 1,
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 2)
		booked <- err
	}()
	select {
	case err := <-booked:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reservation blocked behind a stalled event publish")
	}

	close(events.release)
	require.NoError(t, <-transitioned)
}

func TestListViews_RoleGates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	hostView, err := svc.ListForHost(ctx, hostActor())
	require.NoError(t, err)
	require.Len(t, hostView, 1)
	require.Equal(t, b.ID, hostView[0].ID)

	_, err = svc.ListForHost(ctx, guestActor())
	require.ErrorIs(t, err, ErrUnauthorized)

	guestView, err := svc.ListForGuest(ctx, guestActor())
	require.NoError(t, err)
	require.Len(t, guestView, 1)

	_, err = svc.ListForGuest(ctx, Actor{})
	require.ErrorIs(t, err, ErrUnauthorized)

	adminView, err := svc.ListAll(ctx, Actor{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, adminView, 1)

	_, err = svc.ListAll(ctx, hostActor())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRunExpirySweep_CancelsOnlyStalePending(t *testing.T) {
	svc, store, events := newTestService()
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	mkBooking := func(guest uint64, inDay, outDay int) uint64 {
		b, err := svc.RequestReservation(ctx, Actor{ID: guest, Role: model.RoleGuest}, 1,
			time.Date(2024, 6, inDay, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, outDay, 0, 0, 0, 0, time.UTC), 2)
		require.NoError(t, err)
		return b.ID
	}

	stale := mkBooking(201, 1, 5)
	store.setCreatedAt(stale, now.Add(-25*time.Hour))

	fresh := mkBooking(202, 6, 9)
	store.setCreatedAt(fresh, now.Add(-23*time.Hour))

	confirmedOld := mkBooking(203, 10, 14)
	store.setCreatedAt(confirmedOld, now.Add(-48*time.Hour))
	_, err := svc.TransitionStatus(ctx, hostActor(), confirmedOld, model.StatusConfirmed, now)
	require.NoError(t, err)

	summary, err := svc.RunExpirySweep(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, summary.CancelledCount)

	require.Equal(t, model.StatusCancelled, store.status(stale))
	require.Equal(t, model.StatusPending, store.status(fresh))
	require.Equal(t, model.StatusConfirmed, store.status(confirmedOld))

	// The swept booking's dates open up again.
	free, err := svc.IsAvailable(ctx, 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, free)

	// The sweep announces its cancellation as the system identity.
	var swept []queue.BookingStatusEvent
	for _, ev := range events.all() {
		if ev.Status == model.StatusCancelled {
			swept = append(swept, ev)
		}
	}
	require.Len(t, swept, 1)
	require.Equal(t, stale, swept[0].BookingID)
	require.Equal(t, model.RoleSystem, swept[0].Initiator)

	// Running again finds nothing left to do.
	summary, err = svc.RunExpirySweep(ctx, now)
	require.NoError(t, err)
	require.Zero(t, summary.CancelledCount)
}

func TestRunExpirySweep_SkipsBookingConfirmedAfterSelection(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	b, err := svc.RequestReservation(ctx, guestActor(), 1,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	store.setCreatedAt(b.ID, now.Add(-25*time.Hour))

	// A manual confirmation lands before the sweep touches the row.
	_, err = svc.TransitionStatus(ctx, hostActor(), b.ID, model.StatusConfirmed, now)
	require.NoError(t, err)

	summary, err := svc.RunExpirySweep(ctx, now)
	require.NoError(t, err)
	require.Zero(t, summary.CancelledCount)
	require.Equal(t, model.StatusConfirmed, store.status(b.ID))
}
