package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/homestay-booking/internal/handler"
	"github.com/iliyamo/homestay-booking/internal/middleware"
)

// RegisterHost registers host-scoped endpoints under /v1/host.  All
// routes require a valid JWT and the HOST role.  Hosts manage their
// listings and drive booking lifecycles for stays on those listings.
func RegisterHost(e *echo.Echo, lh *handler.HostListingHandler, bh *handler.HostHandler, jwtSecret string) {
	g := e.Group(
		"/v1/host",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("HOST"),
	)
	// Listing management.
	g.POST("/listings", lh.CreateListing)
	g.GET("/listings", lh.ListMyListings)
	g.PUT("/listings/:id", lh.UpdateListing)
	g.DELETE("/listings/:id", lh.DeleteListing)
	// Bookings across the host's listings and lifecycle transitions.
	g.GET("/bookings", bh.ListHostBookings)
	g.POST("/bookings/:id/status", bh.UpdateStatus)
}
