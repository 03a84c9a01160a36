// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// BookingStatusEvent is published whenever a booking reaches CONFIRMED
// or CANCELLED, whether through a user action or the expiry sweeper.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.
type BookingStatusEvent struct {
	BookingID       uint64 `json:"booking_id"`
	ListingID       uint64 `json:"listing_id"`
	ListingTitle    string `json:"listing_title"`
	GuestID         uint64 `json:"guest_id"`
	Status          string `json:"status"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	GuestCount      uint32 `json:"guest_count"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	Initiator       string `json:"initiator"` // HOST, GUEST or SYSTEM
	OccurredAt      string `json:"occurred_at"`
}
