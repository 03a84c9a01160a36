package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/homestay-booking/internal/config"     // cache and rate-limit configuration
	"github.com/iliyamo/homestay-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/homestay-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The /healthz endpoint is used by load balancers and monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Register, login and token exchange do not require a session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new
	// access token without rotation.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body (or a bearer header to
	// end all sessions) and does not require JWT middleware.
	g.POST("/logout", a.Logout)

	// Protected identity endpoint.  Every authenticated role may ask who
	// they are.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("GUEST", "HOST", "ADMIN"))
	auth.GET("/me", a.Me)

	// Alias kept for clients that call logout at the top level.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// response cache and rate limiter wrap these routes: availability and
// catalogue reads dominate traffic and tolerate a few seconds of
// staleness, while writes always go through authenticated routes that
// bypass the cache.  Both middlewares degrade to pass-through when
// Redis is unavailable.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/v1", limitMW, cacheMW)
	// Browse all listings.
	g.GET("/listings", p.ListListings)
	// Listing detail including its blocked dates for calendar display.
	g.GET("/listings/:id", p.GetListing)
	// Probe a specific date range: ?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD.
	g.GET("/listings/:id/availability", p.CheckAvailability)
	// Keyword search over title, description, city, address and country.
	g.GET("/search/listings", p.SearchListings)
}
