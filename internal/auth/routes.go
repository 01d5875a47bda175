package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the authentication routes on the given Echo
// instance. The limiter middleware gates the whole credential surface --
// register, login, and logout -- so brute-force attempts are bounded per
// client IP. /me sits behind the session middleware instead: it proves a
// token, it doesn't take credentials.
func RegisterRoutes(e *echo.Echo, h *Handler, limiter echo.MiddlewareFunc) {
	guarded := e.Group("", limiter)
	guarded.POST("/register", h.Register)
	guarded.POST("/login", h.Login)
	guarded.POST("/logout", h.Logout)

	e.GET("/me", h.Me, RequireSession(h.service, h.cookies))
}
