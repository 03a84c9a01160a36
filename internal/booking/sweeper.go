package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/homestay-booking/internal/model"
)

// SweepSummary reports the outcome of one expiry sweep.
type SweepSummary struct {
	CancelledCount int `json:"cancelled_count"`
}

// RunExpirySweep cancels every booking that has sat in PENDING longer
// than the configured TTL, releasing its dates.  It drives the exact
// same transition path as a manual cancellation, acting as the system
// identity, so both paths share one set of invariants.
//
// The sweep is idempotent and safe to run concurrently with itself or
// with manual cancellations: each candidate is re-read under its
// listing's lock, and one that already left PENDING is skipped as a
// no-op rather than treated as an error.  A booking that fails to
// transition is logged and left for the next tick.
func (s *Service) RunExpirySweep(ctx context.Context, now time.Time) (SweepSummary, error) {
	cutoff := now.Add(-s.pendingTTL)
	stale, err := s.store.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		return SweepSummary{}, err
	}
	var summary SweepSummary
	for i := range stale {
		if s.expireOne(ctx, stale[i].ID, cutoff) {
			summary.CancelledCount++
		}
	}
	if summary.CancelledCount > 0 {
		log.Printf("sweep: cancelled %d expired pending bookings", summary.CancelledCount)
	}
	return summary, nil
}

// expireOne cancels a single stale booking.  Returns true when this
// sweep actually performed the cancellation.  The event, like every
// status event, goes out only after the listing lock is released.
func (s *Service) expireOne(ctx context.Context, bookingID uint64, cutoff time.Time) bool {
	b := s.cancelStale(ctx, bookingID, cutoff)
	if b == nil {
		return false
	}
	s.announce(ctx, SystemActor, b)
	return true
}

// cancelStale performs the locked re-check and conditional update for
// one sweep candidate, returning the cancelled booking or nil when the
// candidate no longer qualifies.
func (s *Service) cancelStale(ctx context.Context, bookingID uint64, cutoff time.Time) *model.Booking {
	b, hostID, err := s.store.GetBookingWithHost(ctx, bookingID)
	if err != nil {
		log.Printf("sweep: load booking %d: %v", bookingID, err)
		return nil
	}

	unlock := s.locks.Acquire(b.ListingID)
	defer unlock()

	b, hostID, err = s.store.GetBookingWithHost(ctx, bookingID)
	if err != nil {
		log.Printf("sweep: reload booking %d: %v", bookingID, err)
		return nil
	}
	// A manual confirm or cancel may have won the race; the selection
	// predicate excludes it on the next run.
	if b.Status != model.StatusPending || !b.CreatedAt.Before(cutoff) {
		return nil
	}
	if err := Decide(SystemActor, b, hostID, model.StatusCancelled, cutoff); err != nil {
		log.Printf("sweep: booking %d not cancellable: %v", bookingID, err)
		return nil
	}
	changed, err := s.store.UpdateBookingStatus(ctx, bookingID, model.StatusPending, model.StatusCancelled)
	if err != nil {
		log.Printf("sweep: cancel booking %d: %v", bookingID, err)
		return nil
	}
	if !changed {
		return nil
	}
	b.Status = model.StatusCancelled
	return b
}

// RunSweepLoop invokes RunExpirySweep on a fixed interval until the
// context is cancelled.  It is meant to run on its own goroutine from
// main; a failed tick only logs — the next tick re-selects whatever
// is still pending.
func RunSweepLoop(ctx context.Context, s *Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunExpirySweep(ctx, time.Now().UTC()); err != nil {
				log.Printf("sweep: tick failed: %v", err)
			}
		}
	}
}
