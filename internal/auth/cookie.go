package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the HTTP cookie carrying the session token.
const CookieName = "token"

// CookieManager maps session tokens to and from the session cookie. The
// cookie is HttpOnly (script can never read it), SameSite=Strict, Secure in
// production deployments, and lives exactly as long as the token it carries.
type CookieManager struct {
	ttl    time.Duration
	secure bool
}

// NewCookieManager creates a manager whose cookies expire after ttl.
// secure marks cookies as HTTPS-only and should be true in production.
func NewCookieManager(ttl time.Duration, secure bool) *CookieManager {
	return &CookieManager{ttl: ttl, secure: secure}
}

// Attach sets the session cookie carrying the given token on the response.
func (m *CookieManager) Attach(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// Clear overwrites the session cookie with an empty value and an already
// elapsed expiry, so the client discards it immediately. Idempotent: works
// the same whether or not a cookie was present.
func (m *CookieManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Read extracts the session token from the request cookie, or "" when the
// cookie is absent.
func (m *CookieManager) Read(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}
