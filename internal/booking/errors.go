// Package booking owns the reservation lifecycle: who may move a
// booking between statuses, how new reservations are admitted against
// a listing's calendar, and how stale pending bookings are expired.
// It is plain Go with no transport types; HTTP handlers and the sweep
// timer both call into the same entry points.
package booking

import "errors"

// ErrUnauthorized is returned when the acting identity lacks the
// capability for an operation.  It is always checked before transition
// validity, so a forbidden caller cannot probe whether a transition
// would otherwise have been legal.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidTransition is returned when a status change is not in the
// lifecycle table, including any attempt to leave a terminal state.
// The stored status is left untouched.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidGuestCount is returned when a reservation requests zero
// guests or more guests than the listing sleeps.
var ErrInvalidGuestCount = errors.New("invalid guest count")
