package handler

import (
	"errors"   // errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming input fields
	"time"     // response timestamp formatting

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/homestay-booking/internal/model"
	"github.com/iliyamo/homestay-booking/internal/repository"
)

// HostListingHandler lets hosts manage their own listings.  Ownership
// is enforced in the repository, which returns ErrForbidden when a
// host touches somebody else's listing.
type HostListingHandler struct {
	Listings *repository.ListingRepo
}

// NewHostListingHandler constructs a HostListingHandler.
func NewHostListingHandler(repo *repository.ListingRepo) *HostListingHandler {
	if repo == nil {
		panic("nil listing repository passed to NewHostListingHandler")
	}
	return &HostListingHandler{Listings: repo}
}

type listingReq struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PricePerNight uint64 `json:"price_per_night_cents"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	MaxGuests     uint32 `json:"max_guests"`
}

// listingResp is the wire shape of a listing.  Model structs carry no
// JSON tags; every response goes through this type so field names stay
// snake_case like the rest of the API.
type listingResp struct {
	ID            uint64 `json:"id"`
	HostID        uint64 `json:"host_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PricePerNight uint64 `json:"price_per_night_cents"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	MaxGuests     uint32 `json:"max_guests"`
	CreatedAt     string `json:"created_at"`
}

func toListingResp(l *model.Listing) listingResp {
	return listingResp{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		PricePerNight: l.PricePerNight,
		Address:       l.Address,
		City:          l.City,
		Country:       l.Country,
		MaxGuests:     l.MaxGuests,
		CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toListingResps(ls []model.Listing) []listingResp {
	out := make([]listingResp, 0, len(ls))
	for i := range ls {
		out = append(out, toListingResp(&ls[i]))
	}
	return out
}

func (r *listingReq) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if r.PricePerNight == 0 {
		return "price_per_night_cents must be positive"
	}
	if r.MaxGuests == 0 {
		return "max_guests must be positive"
	}
	return ""
}

// CreateListing handles POST /v1/host/listings.
func (h *HostListingHandler) CreateListing(c echo.Context) error {
	hostID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	l := &model.Listing{
		HostID:        hostID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		MaxGuests:     req.MaxGuests,
	}
	if err := h.Listings.Create(c.Request().Context(), l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}
	return c.JSON(http.StatusCreated, toListingResp(l))
}

// ListMyListings handles GET /v1/host/listings.
func (h *HostListingHandler) ListMyListings(c echo.Context) error {
	hostID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Listings.ListByHost(c.Request().Context(), hostID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list listings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": toListingResps(items)})
}

// UpdateListing handles PUT /v1/host/listings/:id.
func (h *HostListingHandler) UpdateListing(c echo.Context) error {
	hostID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	l := &model.Listing{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		MaxGuests:     req.MaxGuests,
	}
	if err := h.Listings.UpdateForHost(c.Request().Context(), l, hostID); err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update listing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// DeleteListing handles DELETE /v1/host/listings/:id.  Deletion is
// refused with 409 while the listing still has active bookings.
func (h *HostListingHandler) DeleteListing(c echo.Context) error {
	hostID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	if err := h.Listings.DeleteForHost(c.Request().Context(), id, hostID); err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "listing has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
