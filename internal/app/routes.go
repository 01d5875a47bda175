package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mwrolfe/gatehouse/internal/auth"
	"github.com/mwrolfe/gatehouse/internal/ratelimit"
)

// RegisterRoutes builds the auth components from the app's shared
// dependencies and registers every route. This is the single place where
// the credential store, hasher, token issuer, and transport are wired
// together.
func RegisterRoutes(a *App) error {
	repo := auth.NewUserRepository(a.DB)
	hasher := auth.NewBcryptHasher(a.Config.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer([]byte(a.Config.Auth.SecretKey), a.Config.Auth.SessionTTL)
	cookies := auth.NewCookieManager(a.Config.Auth.SessionTTL, a.Config.IsProduction())

	service, err := auth.NewAuthService(repo, hasher, tokens)
	if err != nil {
		return err
	}

	handler := auth.NewHandler(service, cookies)
	limiter := ratelimit.Middleware(a.Limiter, a.Config.RateLimit.Max, a.Config.RateLimit.Window)

	auth.RegisterRoutes(a.Echo, handler, limiter)

	// Health check endpoint for container orchestration. Reports the DB,
	// since a reachable server with no credential store is not healthy.
	a.Echo.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := a.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return nil
}
