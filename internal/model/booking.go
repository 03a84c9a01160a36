package model

import "time"

// Booking statuses.  A booking starts out PENDING and is moved through
// the lifecycle exclusively by the booking state machine; handlers and
// repositories never assign these values directly.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// IsTerminalStatus reports whether a booking status admits no further
// transitions.  CANCELLED and COMPLETED are terminal.
func IsTerminalStatus(s string) bool {
	return s == StatusCancelled || s == StatusCompleted
}

// IsActiveStatus reports whether a booking in this status blocks its
// date range.  Only PENDING and CONFIRMED bookings contribute to a
// listing's blocked dates; cancelled bookings released their range and
// completed stays lie in the past.
func IsActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking records a guest's reservation of a listing for a date range.
// The range is half-open: the guest occupies the nights from CheckIn up
// to but not including CheckOut.  Both dates are stored at UTC midnight.
//
// Fields:
//  ID              – primary key identifier.
//  ListingID       – listing whose dates are blocked.
//  GuestID         – user who requested the booking.
//  CheckIn         – first blocked date (inclusive).
//  CheckOut        – day of departure (exclusive); strictly after CheckIn.
//  Status          – state of the booking (PENDING, CONFIRMED, CANCELLED,
//                    COMPLETED).
//  GuestCount      – number of guests; positive and at most the listing's
//                    MaxGuests.
//  TotalPriceCents – nights × listing price, fixed at creation time.
//  CreatedAt       – creation timestamp; drives pending-booking expiry.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	ListingID       uint64    // bookings.listing_id
	GuestID         uint64    // bookings.guest_id
	CheckIn         time.Time // bookings.check_in
	CheckOut        time.Time // bookings.check_out
	Status          string    // bookings.status
	GuestCount      uint32    // bookings.guest_count
	TotalPriceCents uint64    // bookings.total_price_cents
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}

// BookingSummary is a booking joined with enough listing and guest
// context to render host and admin overviews without further queries.
type BookingSummary struct {
	ID              uint64  `json:"id"`
	ListingID       uint64  `json:"listing_id"`
	ListingTitle    string  `json:"listing_title"`
	ListingCity     string  `json:"listing_city"`
	GuestID         uint64  `json:"guest_id"`
	GuestEmail      *string `json:"guest_email,omitempty"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	Status          string  `json:"status"`
	GuestCount      uint32  `json:"guest_count"`
	TotalPriceCents uint64  `json:"total_price_cents"`
	CreatedAt       string  `json:"created_at"`
}
