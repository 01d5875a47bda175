package auth

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// contextKeyIdentity is the Echo context key holding the authenticated
// identity. Downstream handlers read it via CurrentIdentity.
const contextKeyIdentity = "auth_identity"

// RequireSession returns middleware that verifies the session cookie and
// injects the authenticated identity into the request context. Expired and
// tampered tokens are logged as distinct kinds but produce the same 401,
// and the stale cookie is cleared either way.
func RequireSession(service AuthService, cookies *CookieManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			claims, err := service.VerifyToken(token)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					slog.Debug("session token expired",
						slog.String("remote_ip", c.RealIP()),
					)
				} else {
					slog.Warn("session token rejected",
						slog.String("remote_ip", c.RealIP()),
						slog.Any("error", err),
					)
				}

				cookies.Clear(c)
				return apperror.NewUnauthorized("authentication required")
			}

			c.Set(contextKeyIdentity, &Identity{
				ID:       claims.Subject,
				Username: claims.Username,
			})

			return next(c)
		}
	}
}

// CurrentIdentity retrieves the authenticated identity from the Echo
// context. Returns nil if the request is not authenticated (middleware not
// applied).
func CurrentIdentity(c echo.Context) *Identity {
	identity, ok := c.Get(contextKeyIdentity).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
