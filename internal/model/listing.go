package model

import "time"

// Listing represents a homestay offered by a host.  Media attachments
// and reviews live outside this service; the booking core only depends
// on the listing's identity, its owner and its guest capacity.
//
// Fields:
//  ID             – primary key identifier.
//  HostID         – user who owns the listing.
//  Title          – short display name.
//  Description    – free-form description shown on the detail page.
//  PricePerNight  – nightly price in cents.
//  Address        – street address.
//  City           – city name, searchable.
//  Country        – country name, searchable.
//  MaxGuests      – guest capacity; bookings above it are rejected.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Listing struct {
	ID            uint64    // listings.id
	HostID        uint64    // listings.host_id
	Title         string    // listings.title
	Description   string    // listings.description
	PricePerNight uint64    // listings.price_per_night_cents
	Address       string    // listings.address
	City          string    // listings.city
	Country       string    // listings.country
	MaxGuests     uint32    // listings.max_guests
	CreatedAt     time.Time // listings.created_at
	UpdatedAt     time.Time // listings.updated_at
}
