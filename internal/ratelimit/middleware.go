package ratelimit

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// rejectMessage is the fixed body returned on every rejected attempt. A
// single message regardless of path or how far over the limit the client
// is, so responses carry no extra signal.
const rejectMessage = "Too many attempts from this IP, please try again later."

// Middleware returns Echo middleware that limits requests per client IP to
// maxAttempts within the given fixed window. Standard RateLimit-* headers
// are set on every response, and rejected requests additionally get
// Retry-After. Counter store failures fail open: being briefly generous
// beats taking logins down with Redis.
func Middleware(store Store, maxAttempts int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			count, reset, err := store.Incr(c.Request().Context(), c.RealIP(), window)
			if err != nil {
				slog.Warn("rate limit store unavailable, allowing request",
					slog.String("remote_ip", c.RealIP()),
					slog.Any("error", err),
				)
				return next(c)
			}

			retryAfter := int(time.Until(reset).Seconds() + 0.5)
			if retryAfter < 0 {
				retryAfter = 0
			}

			remaining := maxAttempts - count
			if remaining < 0 {
				remaining = 0
			}

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(maxAttempts))
			h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(retryAfter))

			if count > maxAttempts {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return apperror.NewTooManyRequests(rejectMessage)
			}

			return next(c)
		}
	}
}
