package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/homestay-booking/internal/model"
)

// ListingRepo provides CRUD operations for listings.  Ownership is
// enforced here: mutations verify the acting host against the stored
// host_id and return ErrForbidden on mismatch, so handlers can map the
// failure to 403 without loading the row themselves.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingColumns = `id, host_id, title, description, price_per_night_cents,
                        address, city, country, max_guests, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID, &l.HostID, &l.Title, &l.Description, &l.PricePerNight,
		&l.Address, &l.City, &l.Country, &l.MaxGuests, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a listing for the host and populates the generated ID
// and timestamps.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	const q = `INSERT INTO listings
               (host_id, title, description, price_per_night_cents, address, city, country, max_guests)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		l.HostID, l.Title, l.Description, l.PricePerNight,
		l.Address, l.City, l.Country, l.MaxGuests,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM listings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, l.ID).Scan(&l.CreatedAt, &l.UpdatedAt)
}

// GetListing returns a single listing or ErrListingNotFound.
func (r *ListingRepo) GetListing(ctx context.Context, id uint64) (*model.Listing, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id))
}

// ListAll returns every listing, newest first.
func (r *ListingRepo) ListAll(ctx context.Context) ([]model.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
}

// ListByHost returns the host's own listings, newest first.
func (r *ListingRepo) ListByHost(ctx context.Context, hostID uint64) ([]model.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE host_id = ? ORDER BY created_at DESC`, hostID)
}

// Search performs a keyword match over title, description, city,
// address and country.
func (r *ListingRepo) Search(ctx context.Context, keyword string) ([]model.Listing, error) {
	like := "%" + keyword + "%"
	const q = `SELECT ` + listingColumns + ` FROM listings
               WHERE title LIKE ? OR description LIKE ? OR city LIKE ? OR address LIKE ? OR country LIKE ?
               ORDER BY created_at DESC`
	return r.queryListings(ctx, q, like, like, like, like, like)
}

func (r *ListingRepo) queryListings(ctx context.Context, q string, args ...any) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Listing, 0)
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ID, &l.HostID, &l.Title, &l.Description, &l.PricePerNight,
			&l.Address, &l.City, &l.Country, &l.MaxGuests, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateForHost applies the new attributes to a listing after checking
// that it belongs to the acting host.  Returns ErrListingNotFound when
// the listing does not exist and ErrForbidden when it is owned by a
// different host.
func (r *ListingRepo) UpdateForHost(ctx context.Context, l *model.Listing, hostID uint64) error {
	var actualHostID uint64
	err := r.db.QueryRowContext(ctx, `SELECT host_id FROM listings WHERE id = ?`, l.ID).Scan(&actualHostID)
	if err == sql.ErrNoRows {
		return ErrListingNotFound
	}
	if err != nil {
		return err
	}
	if actualHostID != hostID {
		return ErrForbidden
	}
	const q = `UPDATE listings
               SET title = ?, description = ?, price_per_night_cents = ?,
                   address = ?, city = ?, country = ?, max_guests = ?
               WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		l.Title, l.Description, l.PricePerNight,
		l.Address, l.City, l.Country, l.MaxGuests, l.ID,
	)
	return err
}

// DeleteForHost removes a listing after verifying ownership.  Deletion
// is refused with ErrConflict while the listing still has PENDING or
// CONFIRMED bookings; bookings themselves are never deleted, so a
// listing with only finished history can go.
func (r *ListingRepo) DeleteForHost(ctx context.Context, id, hostID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var actualHostID uint64
	err = tx.QueryRowContext(ctx, `SELECT host_id FROM listings WHERE id = ?`, id).Scan(&actualHostID)
	if err == sql.ErrNoRows {
		return ErrListingNotFound
	}
	if err != nil {
		return err
	}
	if actualHostID != hostID {
		return ErrForbidden
	}
	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE listing_id = ? AND status IN ('PENDING','CONFIRMED')`,
		id).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
