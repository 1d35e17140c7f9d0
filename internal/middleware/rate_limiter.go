package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RateLimiter creates a rate limiter middleware for the auth endpoints.
// It limits requests to 10 per second (with matching burst) per IP address
// for the routes it's applied to; the in-memory store is suitable for
// single-instance deployments.
func RateLimiter() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(10),

		// Clients are identified by their real IP address.
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"message": "too many requests, please try again later",
			})
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
