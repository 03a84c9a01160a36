package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/homestay-booking/internal/handler"
	"github.com/iliyamo/homestay-booking/internal/middleware"
)

// RegisterGuest registers guest-scoped endpoints under /v1.  All routes
// require a valid JWT.  Hosts are allowed through as well: a host
// booking a stay on someone else's listing acts as an ordinary
// requester, which the booking core handles uniformly.
func RegisterGuest(e *echo.Echo, h *handler.GuestHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("GUEST", "HOST"),
	)
	// Request a new reservation; it starts PENDING and blocks its dates.
	g.POST("/listings/:id/bookings", h.RequestBooking)
	// The caller's own bookings, newest first.
	g.GET("/my-bookings", h.ListMyBookings)
	// Self-cancel; only legal while the booking is still PENDING.
	g.POST("/bookings/:id/cancel", h.CancelBooking)
}
