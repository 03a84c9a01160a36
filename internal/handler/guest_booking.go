package handler

import (
	"errors"   // errors.Is comparisons against domain sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // transition timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/booking"
	"github.com/iliyamo/homestay-booking/internal/model"
	"github.com/iliyamo/homestay-booking/internal/repository"
)

// GuestHandler exposes booking operations available to authenticated
// guests: requesting a reservation, listing their own bookings and
// cancelling a booking they created.  All date handling and lifecycle
// rules live in the booking core; this layer only translates HTTP.
type GuestHandler struct {
	Bookings *booking.Service
}

// NewGuestHandler constructs a GuestHandler.  The booking service must
// be non-nil.
func NewGuestHandler(svc *booking.Service) *GuestHandler {
	if svc == nil {
		panic("nil booking service passed to NewGuestHandler")
	}
	return &GuestHandler{Bookings: svc}
}

type createBookingReq struct {
	CheckIn    string `json:"check_in"`    // ISO date, first night
	CheckOut   string `json:"check_out"`   // ISO date, day of departure
	GuestCount uint32 `json:"guest_count"` // number of guests
}

type bookingResp struct {
	ID              uint64 `json:"id"`
	ListingID       uint64 `json:"listing_id"`
	GuestID         uint64 `json:"guest_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Status          string `json:"status"`
	GuestCount      uint32 `json:"guest_count"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	CreatedAt       string `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		CheckIn:         b.CheckIn.Format("2006-01-02"),
		CheckOut:        b.CheckOut.Format("2006-01-02"),
		Status:          b.Status,
		GuestCount:      b.GuestCount,
		TotalPriceCents: b.TotalPriceCents,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// RequestBooking handles POST /v1/listings/:id/bookings.  The body
// carries check_in/check_out as ISO dates plus the guest count.  A new
// booking starts out PENDING and blocks its range immediately; 409 is
// returned when the range overlaps an active booking.
func (h *GuestHandler) RequestBooking(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}

	b, err := h.Bookings.RequestReservation(c.Request().Context(), actor, listingID, checkIn, checkOut, req.GuestCount)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "check-in must be before check-out"})
		case errors.Is(err, booking.ErrInvalidGuestCount):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest count out of range"})
		case errors.Is(err, repository.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "dates are not available"})
		case errors.Is(err, booking.ErrUnauthorized):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// ListMyBookings handles GET /v1/my-bookings and returns the guest's
// own bookings, newest first.
func (h *GuestHandler) ListMyBookings(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForGuest(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, booking.ErrUnauthorized) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  A guest may
// cancel only their own booking and only while it is still PENDING;
// afterwards cancellation is the host's call.
func (h *GuestHandler) CancelBooking(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.TransitionStatus(c.Request().Context(), actor, bookingID, model.StatusCancelled, time.Now().UTC())
	if err != nil {
		return writeTransitionError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// writeTransitionError maps booking core failures onto HTTP responses.
// The order of the sentinels mirrors the core's own check order:
// authorization failures surface as 403 before any hint of whether the
// requested transition was valid.
func writeTransitionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, booking.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
}
