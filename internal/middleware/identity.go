package middleware

// identity.go defines helpers shared across middleware files.  It
// resolves the acting user's identifier from the request context for
// rate-limit keying; handlers use the stricter typed extraction in the
// handler package instead.

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user's ID as a string, or
// "anon" when the request carries no verified identity.  JWTAuth
// stores the subject claim under "user_id"; unauthenticated routes
// never set it.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("userID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
