package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/model"
)

// BookingRepo provides data access to the bookings table.  Check-in
// and check-out are DATE columns compared at day granularity; all
// timestamp columns are stored in UTC.  It implements the booking
// core's Store interface together with the listing join helpers below.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const dateLayout = "2006-01-02"

// ActiveIntervals returns the [check_in, check_out) ranges of every
// PENDING or CONFIRMED booking for the listing, ordered by check-in.
// A listing with no bookings yields an empty slice, not an error.
func (r *BookingRepo) ActiveIntervals(ctx context.Context, listingID uint64) ([]availability.Interval, error) {
	const q = `SELECT check_in, check_out FROM bookings
               WHERE listing_id = ? AND status IN ('PENDING','CONFIRMED')
               ORDER BY check_in`
	rows, err := r.db.QueryContext(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	intervals := make([]availability.Interval, 0)
	for rows.Next() {
		var in, out time.Time
		if err := rows.Scan(&in, &out); err != nil {
			return nil, err
		}
		intervals = append(intervals, availability.Interval{
			CheckIn:  availability.Day(in),
			CheckOut: availability.Day(out),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return intervals, nil
}

// InsertBooking persists a new booking and populates its generated ID
// and timestamps from the stored row.  The caller is expected to hold
// the listing's lock across the preceding availability check and this
// insert.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (listing_id, guest_id, check_in, check_out, status, guest_count, total_price_cents)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		b.ListingID, b.GuestID,
		b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout),
		b.Status, b.GuestCount, b.TotalPriceCents,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetBookingWithHost loads a booking along with the owning host of its
// listing.  Returns ErrBookingNotFound when the booking does not exist.
func (r *BookingRepo) GetBookingWithHost(ctx context.Context, id uint64) (*model.Booking, uint64, error) {
	const q = `SELECT b.id, b.listing_id, b.guest_id, b.check_in, b.check_out,
                      b.status, b.guest_count, b.total_price_cents, b.created_at, b.updated_at,
                      l.host_id
               FROM bookings b
               JOIN listings l ON l.id = b.listing_id
               WHERE b.id = ?`
	var b model.Booking
	var hostID uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.ListingID, &b.GuestID, &b.CheckIn, &b.CheckOut,
		&b.Status, &b.GuestCount, &b.TotalPriceCents, &b.CreatedAt, &b.UpdatedAt,
		&hostID,
	)
	if err == sql.ErrNoRows {
		return nil, 0, ErrBookingNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	b.CheckIn = availability.Day(b.CheckIn)
	b.CheckOut = availability.Day(b.CheckOut)
	return &b, hostID, nil
}

// UpdateBookingStatus moves a booking from one status to another.  The
// WHERE clause is conditional on the current status so a stale writer
// cannot overwrite a transition that already happened; the bool result
// reports whether a row actually changed.  ErrBookingNotFound is
// returned when the identifier is unknown.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id uint64, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Distinguish "already moved" from "no such booking".
	var exists uint64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, ErrBookingNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// FindPendingOlderThan returns every PENDING booking created strictly
// before the cutoff, oldest first.  The expiry sweeper feeds each
// result through the normal cancellation path.
func (r *BookingRepo) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	const q = `SELECT id, listing_id, guest_id, check_in, check_out,
                      status, guest_count, total_price_cents, created_at, updated_at
               FROM bookings
               WHERE status = 'PENDING' AND created_at < ?
               ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.ListingID, &b.GuestID, &b.CheckIn, &b.CheckOut,
			&b.Status, &b.GuestCount, &b.TotalPriceCents, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.CheckIn = availability.Day(b.CheckIn)
		b.CheckOut = availability.Day(b.CheckOut)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// summaryQuery joins bookings with their listing and guest so host and
// admin views render without further round trips.
const summaryQuery = `SELECT b.id, b.listing_id, l.title, l.city,
                             b.guest_id, u.email,
                             b.check_in, b.check_out, b.status,
                             b.guest_count, b.total_price_cents, b.created_at
                      FROM bookings b
                      JOIN listings l ON l.id = b.listing_id
                      JOIN users u ON u.id = b.guest_id`

func (r *BookingRepo) scanSummaries(rows *sql.Rows) ([]model.BookingSummary, error) {
	defer rows.Close()
	out := make([]model.BookingSummary, 0)
	for rows.Next() {
		var s model.BookingSummary
		var email sql.NullString
		var in, outDate, createdAt time.Time
		if err := rows.Scan(
			&s.ID, &s.ListingID, &s.ListingTitle, &s.ListingCity,
			&s.GuestID, &email,
			&in, &outDate, &s.Status,
			&s.GuestCount, &s.TotalPriceCents, &createdAt,
		); err != nil {
			return nil, err
		}
		if email.Valid {
			e := email.String
			s.GuestEmail = &e
		}
		s.CheckIn = availability.Day(in).Format(dateLayout)
		s.CheckOut = availability.Day(outDate).Format(dateLayout)
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBookingsByHost returns all bookings across the host's listings,
// newest first.
func (r *BookingRepo) ListBookingsByHost(ctx context.Context, hostID uint64) ([]model.BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, summaryQuery+` WHERE l.host_id = ? ORDER BY b.created_at DESC`, hostID)
	if err != nil {
		return nil, err
	}
	return r.scanSummaries(rows)
}

// ListBookingsByGuest returns the guest's own bookings, newest first.
func (r *BookingRepo) ListBookingsByGuest(ctx context.Context, guestID uint64) ([]model.BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, summaryQuery+` WHERE b.guest_id = ? ORDER BY b.created_at DESC`, guestID)
	if err != nil {
		return nil, err
	}
	return r.scanSummaries(rows)
}

// ListAllBookings returns every booking in the system, newest first.
// Authorization (admin only) is enforced by the booking core.
func (r *BookingRepo) ListAllBookings(ctx context.Context) ([]model.BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, summaryQuery+` ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanSummaries(rows)
}
