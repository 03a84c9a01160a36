package booking

import (
	"time"

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/model"
)

// Actor is the identity attempting an operation.  For end users the ID
// and Role come from the verified JWT; the expiry sweeper acts as
// SystemActor.
type Actor struct {
	ID   uint64
	Role string
}

// SystemActor identifies internally initiated transitions such as
// sweep-driven cancellations.  It bypasses the ownership checks that
// apply to end users but still goes through the transition table.
var SystemActor = Actor{Role: model.RoleSystem}

// relation classifies an actor with respect to a specific booking.
type relation int

const (
	relNone      relation = iota
	relHost               // owns the listing the booking is for
	relRequester          // created the booking
	relSystem             // internal process
)

func classify(actor Actor, b *model.Booking, hostID uint64) relation {
	switch {
	case actor.Role == model.RoleSystem:
		return relSystem
	case actor.ID != 0 && actor.ID == hostID:
		return relHost
	case actor.ID != 0 && actor.ID == b.GuestID:
		return relRequester
	default:
		return relNone
	}
}

// statusChange is a (from, to) pair in the lifecycle table.
type statusChange struct {
	from, to string
}

// transitions maps every legal status change to the relations allowed
// to perform it.  Anything absent from this table is invalid,
// including every transition out of CANCELLED and COMPLETED.
var transitions = map[statusChange][]relation{
	{model.StatusPending, model.StatusConfirmed}:   {relHost},
	{model.StatusPending, model.StatusCancelled}:   {relHost, relRequester, relSystem},
	{model.StatusConfirmed, model.StatusCancelled}: {relHost},
	{model.StatusConfirmed, model.StatusCompleted}: {relHost, relSystem},
}

// Decide checks whether the actor may move the booking from its
// current status to the requested one.  The authorization verdict is
// computed first: a caller who is neither the listing's host, nor the
// booking's requester, nor the system identity — or who asks for a
// change their relation never permits — gets ErrUnauthorized without
// learning whether the change would have been valid.  Only after that
// does the transition table reject invalid or terminal moves with
// ErrInvalidTransition.
//
// The system path for CONFIRMED → COMPLETED additionally requires that
// the stay's check-out date has passed; a host may complete earlier
// (e.g. on an agreed early departure).
func Decide(actor Actor, b *model.Booking, hostID uint64, to string, now time.Time) error {
	rel := classify(actor, b, hostID)
	if rel == relNone {
		return ErrUnauthorized
	}
	change := statusChange{from: b.Status, to: to}
	if allowed, ok := transitions[change]; ok {
		permitted := false
		for _, r := range allowed {
			if r == rel {
				permitted = true
				break
			}
		}
		if !permitted {
			return ErrUnauthorized
		}
	}
	if _, ok := transitions[change]; !ok {
		return ErrInvalidTransition
	}
	if rel == relSystem && to == model.StatusCompleted && availability.Day(now).Before(b.CheckOut) {
		return ErrInvalidTransition
	}
	return nil
}
