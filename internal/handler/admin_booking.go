package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/homestay-booking/internal/booking"
)

// AdminHandler exposes the admin-only view over every booking in the
// system.  The role gate is enforced twice: the router applies the
// ADMIN role middleware and the booking core checks the actor again.
type AdminHandler struct {
	Bookings *booking.Service
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *booking.Service) *AdminHandler {
	if svc == nil {
		panic("nil booking service passed to NewAdminHandler")
	}
	return &AdminHandler{Bookings: svc}
}

// ListAllBookings handles GET /v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListAll(c.Request().Context(), actor)
	if err != nil {
		if err == booking.ErrUnauthorized {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}
