package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time parses calendar dates from requests

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/homestay-booking/internal/booking" // booking core actor type
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actorFrom builds the booking core's acting identity from the JWT
// claims stored in context by the auth middleware.
func actorFrom(c echo.Context) (booking.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return booking.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return booking.Actor{ID: uid, Role: role}, nil
}

// parseDate parses an ISO calendar date (YYYY-MM-DD) in UTC.  All
// booking dates cross the API boundary in this format; times of day
// are never accepted.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
