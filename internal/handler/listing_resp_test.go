package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/homestay-booking/internal/model"
)

func TestListingResponseUsesSnakeCaseKeys(t *testing.T) {
	l := &model.Listing{
		ID:            3,
		HostID:        10,
		Title:         "Harbour loft",
		Description:   "Two rooms above the marina",
		PricePerNight: 12000,
		Address:       "Rua do Cais 5",
		City:          "Porto",
		Country:       "Portugal",
		MaxGuests:     4,
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(toListingResp(l))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))

	for _, key := range []string{
		"id", "host_id", "title", "description", "price_per_night_cents",
		"address", "city", "country", "max_guests", "created_at",
	} {
		require.Contains(t, wire, key)
	}
	// Model field names must not leak through.
	require.NotContains(t, wire, "ID")
	require.NotContains(t, wire, "HostID")
	require.NotContains(t, wire, "PricePerNight")

	require.Equal(t, float64(12000), wire["price_per_night_cents"])
	require.Equal(t, "2024-05-01T12:00:00Z", wire["created_at"])
}
