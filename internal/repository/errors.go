// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios:
// ErrForbidden indicates that the current user is not authorized to
// touch a resource owned by someone else, while ErrConflict signals
// that a write cannot proceed because of existing state (an
// overlapping booking, or deleting a listing with active bookings).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state,
// such as requesting dates that overlap an active booking. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrBookingNotFound is returned when no booking exists for the given
// identifier.
var ErrBookingNotFound = errors.New("booking not found")

// ErrListingNotFound is returned when no listing exists for the given
// identifier.
var ErrListingNotFound = errors.New("listing not found")
