package handler

import (
	"errors"   // errors.Is comparisons against domain sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming query parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/homestay-booking/internal/availability"
	"github.com/iliyamo/homestay-booking/internal/booking"
	"github.com/iliyamo/homestay-booking/internal/repository"
)

// PublicHandler serves unauthenticated browse endpoints: listing
// catalogue, listing detail with its blocked dates, keyword search and
// the availability probe used by date pickers.  These routes sit
// behind the response cache and rate limiter.
type PublicHandler struct {
	Listings *repository.ListingRepo
	Bookings *booking.Service
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(listings *repository.ListingRepo, bookings *booking.Service) *PublicHandler {
	if listings == nil || bookings == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Listings: listings, Bookings: bookings}
}

// ListListings handles GET /v1/listings.
func (h *PublicHandler) ListListings(c echo.Context) error {
	items, err := h.Listings.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list listings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": toListingResps(items)})
}

// GetListing handles GET /v1/listings/:id.  The response includes the
// listing's blocked dates so a calendar can be rendered from a single
// request, matching how the booking flow consumes it.
func (h *PublicHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx := c.Request().Context()
	l, err := h.Listings.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load listing failed"})
	}
	days, err := h.Bookings.BlockedDates(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load blocked dates failed"})
	}
	blocked := make([]string, 0, len(days))
	for _, d := range days {
		blocked = append(blocked, d.Format("2006-01-02"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"listing":       toListingResp(l),
		"blocked_dates": blocked,
	})
}

// SearchListings handles GET /v1/search/listings?q=keyword with a
// keyword match over title, description, city, address and country.
func (h *PublicHandler) SearchListings(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	items, err := h.Listings.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": toListingResps(items)})
}

// CheckAvailability handles GET
// /v1/listings/:id/availability?check_in=...&check_out=... and reports
// whether the half-open range is free.  Ranges that merely touch an
// existing booking's check-out day count as free.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}
	free, err := h.Bookings.IsAvailable(c.Request().Context(), id, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "check-in must be before check-out"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"listing_id": id,
		"check_in":   availability.Day(checkIn).Format("2006-01-02"),
		"check_out":  availability.Day(checkOut).Format("2006-01-02"),
		"available":  free,
	})
}
