package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/model"
	"github.com/iliyamo/homestay-booking/internal/queue"
	"github.com/iliyamo/homestay-booking/internal/repository"
)

// Store is the persistence collaborator for the booking core.  The
// repository layer implements it against MySQL; tests implement it in
// memory.  Single calls are atomic at the row level — cross-row
// consistency comes from the per-listing lock held by the service
// around every read-check-then-write sequence.
type Store interface {
	availability.IntervalSource
	// InsertBooking persists a new PENDING booking and fills in its
	// generated ID and timestamps.  It returns repository.ErrConflict
	// when a store-level overlap constraint rejects the row.
	InsertBooking(ctx context.Context, b *model.Booking) error
	// GetBookingWithHost loads a booking together with the owning
	// host of its listing.  Returns repository.ErrBookingNotFound
	// when no such booking exists.
	GetBookingWithHost(ctx context.Context, id uint64) (*model.Booking, uint64, error)
	// UpdateBookingStatus moves a booking from one status to another.
	// The update is conditional on the current status so a stale
	// writer cannot resurrect a terminal booking; it reports whether
	// a row was actually changed.
	UpdateBookingStatus(ctx context.Context, id uint64, from, to string) (bool, error)
	// FindPendingOlderThan returns every PENDING booking created
	// strictly before the cutoff.
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
	ListBookingsByHost(ctx context.Context, hostID uint64) ([]model.BookingSummary, error)
	ListBookingsByGuest(ctx context.Context, guestID uint64) ([]model.BookingSummary, error)
	ListAllBookings(ctx context.Context) ([]model.BookingSummary, error)
}

// ListingSource resolves listings for capacity and ownership checks.
type ListingSource interface {
	// GetListing returns repository.ErrListingNotFound when the
	// listing does not exist.
	GetListing(ctx context.Context, id uint64) (*model.Listing, error)
}

// EventPublisher pushes booking status events to the message broker.
// Publishing is fire-and-forget: failures are logged, never surfaced
// to the caller, and never roll back the status change.
type EventPublisher interface {
	PublishBookingStatus(ctx context.Context, ev queue.BookingStatusEvent) error
}

// Service is the complete external surface of the booking core:
// availability reads, reservation creation, status transitions, the
// host/guest/admin listing views and the expiry sweep.  Handlers wrap
// these methods; nothing framework-specific crosses this boundary.
type Service struct {
	store      Store
	listings   ListingSource
	index      *availability.Index
	locks      *availability.LockTable
	events     EventPublisher
	pendingTTL time.Duration
}

// NewService wires the booking core.  events may be nil, in which case
// no status events are published.  pendingTTL controls how long a
// PENDING booking may wait for host confirmation before the sweeper
// cancels it; zero or negative values fall back to 24 hours.
func NewService(store Store, listings ListingSource, events EventPublisher, pendingTTL time.Duration) *Service {
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	return &Service{
		store:      store,
		listings:   listings,
		index:      availability.NewIndex(store),
		locks:      availability.NewLockTable(),
		events:     events,
		pendingTTL: pendingTTL,
	}
}

// IsAvailable reports whether the listing is free for the half-open
// range [checkIn, checkOut).  A listing with no active bookings is
// vacuously available.  Inverted or empty ranges fail with
// availability.ErrInvalidRange before any lookup.
func (s *Service) IsAvailable(ctx context.Context, listingID uint64, checkIn, checkOut time.Time) (bool, error) {
	iv, err := availability.NewInterval(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return s.index.IsAvailable(ctx, listingID, iv)
}

// BlockedDates returns the sorted, de-duplicated set of calendar days
// currently blocked by PENDING or CONFIRMED bookings on the listing.
func (s *Service) BlockedDates(ctx context.Context, listingID uint64) ([]time.Time, error) {
	return s.index.BlockedDates(ctx, listingID, true)
}

// RequestReservation admits a new booking for the listing.  Any
// authenticated identity may request one; a host booking their own
// listing is not rejected here.  The availability check and the
// insert run under the listing's lock so two concurrent requests for
// overlapping ranges cannot both succeed — the loser gets
// repository.ErrConflict.
func (s *Service) RequestReservation(ctx context.Context, actor Actor, listingID uint64, checkIn, checkOut time.Time, guestCount uint32) (*model.Booking, error) {
	if actor.ID == 0 {
		return nil, ErrUnauthorized
	}
	iv, err := availability.NewInterval(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if guestCount == 0 {
		return nil, ErrInvalidGuestCount
	}
	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if guestCount > listing.MaxGuests {
		return nil, ErrInvalidGuestCount
	}

	unlock := s.locks.Acquire(listingID)
	defer unlock()

	free, err := s.index.IsAvailable(ctx, listingID, iv)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, repository.ErrConflict
	}
	b := &model.Booking{
		ListingID:       listingID,
		GuestID:         actor.ID,
		CheckIn:         iv.CheckIn,
		CheckOut:        iv.CheckOut,
		Status:          model.StatusPending,
		GuestCount:      guestCount,
		TotalPriceCents: uint64(iv.Nights()) * listing.PricePerNight,
	}
	if err := s.store.InsertBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// TransitionStatus moves a booking to the requested status on behalf
// of the actor.  Authorization is evaluated before transition
// validity; see Decide.  Cancellations release the booking's interval
// simply by leaving the active set — the next availability query no
// longer sees it.  Confirmed and cancelled outcomes are announced on
// the broker.
func (s *Service) TransitionStatus(ctx context.Context, actor Actor, bookingID uint64, to string, now time.Time) (*model.Booking, error) {
	b, _, err := s.store.GetBookingWithHost(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	b, err = s.applyTransition(ctx, actor, bookingID, b.ListingID, to, now)
	if err != nil {
		return nil, err
	}
	// Publish after the listing lock is released: the publisher dials
	// the broker per event, and a slow broker must not stall new
	// reservations on the listing.
	s.announce(ctx, actor, b)
	return b, nil
}

// applyTransition performs the locked read-decide-update sequence and
// returns the booking in its new status.
func (s *Service) applyTransition(ctx context.Context, actor Actor, bookingID, listingID uint64, to string, now time.Time) (*model.Booking, error) {
	unlock := s.locks.Acquire(listingID)
	defer unlock()

	// Reload under the lock: a sweep or another caller may have moved
	// the status between the first read and lock acquisition.
	b, hostID, err := s.store.GetBookingWithHost(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := Decide(actor, b, hostID, to, now); err != nil {
		return nil, err
	}
	changed, err := s.store.UpdateBookingStatus(ctx, bookingID, b.Status, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		// The row moved underneath us despite the lock (e.g. an
		// external writer).  Treat it like any other illegal move.
		return nil, ErrInvalidTransition
	}
	b.Status = to
	return b, nil
}

// ListForHost returns every booking across the listings owned by the
// acting host, newest first.  Only hosts may call it, and they only
// ever see their own listings' bookings.
func (s *Service) ListForHost(ctx context.Context, actor Actor) ([]model.BookingSummary, error) {
	if actor.Role != model.RoleHost {
		return nil, ErrUnauthorized
	}
	return s.store.ListBookingsByHost(ctx, actor.ID)
}

// ListForGuest returns the acting user's own bookings, newest first.
func (s *Service) ListForGuest(ctx context.Context, actor Actor) ([]model.BookingSummary, error) {
	if actor.ID == 0 {
		return nil, ErrUnauthorized
	}
	return s.store.ListBookingsByGuest(ctx, actor.ID)
}

// ListAll returns every booking in the system.  Admin only.
func (s *Service) ListAll(ctx context.Context, actor Actor) ([]model.BookingSummary, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return s.store.ListAllBookings(ctx)
}

// announce publishes a status event for CONFIRMED and CANCELLED
// outcomes.  Errors are logged and swallowed: event delivery must
// never fail a committed status change.
func (s *Service) announce(ctx context.Context, actor Actor, b *model.Booking) {
	if s.events == nil {
		return
	}
	if b.Status != model.StatusConfirmed && b.Status != model.StatusCancelled {
		return
	}
	initiator := actor.Role
	if initiator == "" {
		initiator = model.RoleSystem
	}
	ev := queue.BookingStatusEvent{
		BookingID:       b.ID,
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		Status:          b.Status,
		CheckIn:         b.CheckIn.Format("2006-01-02"),
		CheckOut:        b.CheckOut.Format("2006-01-02"),
		GuestCount:      b.GuestCount,
		TotalPriceCents: b.TotalPriceCents,
		Initiator:       initiator,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if listing, err := s.listings.GetListing(ctx, b.ListingID); err == nil {
		ev.ListingTitle = listing.Title
	}
	if err := s.events.PublishBookingStatus(ctx, ev); err != nil {
		log.Printf("booking: publish status event failed: %v", err)
	}
}
