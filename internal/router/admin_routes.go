package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/homestay-booking/internal/handler"
	"github.com/iliyamo/homestay-booking/internal/middleware"
)

// RegisterAdmin registers admin-only endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// Every booking in the system, newest first.
	g.GET("/bookings", h.ListAllBookings)
}
