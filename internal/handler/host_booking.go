package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // normalizing the requested status
	"time"     // transition timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/homestay-booking/internal/booking"
	"github.com/iliyamo/homestay-booking/internal/model"
)

// HostHandler exposes booking operations for hosts: moving a booking
// through its lifecycle (confirm, cancel, complete) and listing every
// booking across the host's listings.  Which transitions a host may
// perform is decided by the booking core, not here.
type HostHandler struct {
	Bookings *booking.Service
}

// NewHostHandler constructs a HostHandler.  The booking service must
// be non-nil.
func NewHostHandler(svc *booking.Service) *HostHandler {
	if svc == nil {
		panic("nil booking service passed to NewHostHandler")
	}
	return &HostHandler{Bookings: svc}
}

type updateStatusReq struct {
	Status string `json:"status"` // CONFIRMED, CANCELLED or COMPLETED
}

// UpdateStatus handles POST /v1/host/bookings/:id/status.  The body
// names the target status; the booking core decides whether this host
// owns the listing and whether the transition is legal.
func (h *HostHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	to := strings.ToUpper(strings.TrimSpace(req.Status))
	switch to {
	case model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be CONFIRMED, CANCELLED or COMPLETED"})
	}
	b, err := h.Bookings.TransitionStatus(c.Request().Context(), actor, bookingID, to, time.Now().UTC())
	if err != nil {
		return writeTransitionError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// ListHostBookings handles GET /v1/host/bookings and returns every
// booking across the host's own listings, newest first.
func (h *HostHandler) ListHostBookings(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForHost(c.Request().Context(), actor)
	if err != nil {
		if err == booking.ErrUnauthorized {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}
