package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mwrolfe/gatehouse/internal/apperror"
	"github.com/mwrolfe/gatehouse/internal/config"
	"github.com/mwrolfe/gatehouse/internal/ratelimit"
)

// newTestApp builds an App with the full middleware stack and error handler
// but no database; tests register their own routes.
func newTestApp() *App {
	cfg := &config.Config{
		Env:         "development",
		CORSOrigins: []string{"http://localhost:3000"},
		RateLimit: config.RateLimitConfig{
			Max:     5,
			Window:  time.Minute,
			Backend: "memory",
		},
	}
	return New(cfg, nil, ratelimit.NewMemoryStore())
}

func get(a *App, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler_MapsAppErrorToJSON(t *testing.T) {
	a := newTestApp()
	a.Echo.GET("/boom", func(c echo.Context) error {
		return apperror.NewConflict("username is already taken")
	})

	rec := get(a, "/boom")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["error"] != "Conflict" {
		t.Errorf("expected error Conflict, got %q", body["error"])
	}
	if body["message"] != "username is already taken" {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	a := newTestApp()
	a.Echo.GET("/boom", func(c echo.Context) error {
		return apperror.NewInternal(echo.NewHTTPError(http.StatusTeapot, "secret table users is on fire"))
	})

	rec := get(a, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); len(got) > 0 && (strings.Contains(got, "secret") || strings.Contains(got, "users")) {
		t.Errorf("internal details leaked to client: %s", got)
	}
}

func TestErrorHandler_RouterNotFound(t *testing.T) {
	a := newTestApp()

	rec := get(a, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "application/json") {
		t.Errorf("expected JSON error response, got content type %q", ct)
	}
}

func TestSecurityHeaders_OnEveryResponse(t *testing.T) {
	a := newTestApp()
	a.Echo.GET("/ok", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := get(a, "/ok")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected no-store caching")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected frame denial")
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	a := newTestApp()
	a.Echo.GET("/panic", func(c echo.Context) error {
		panic("handler exploded")
	})

	rec := get(a, "/panic")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "exploded") {
		t.Error("panic value leaked to client")
	}
}

func TestRateLimitedRoute_EndToEnd(t *testing.T) {
	a := newTestApp()
	limiter := ratelimit.Middleware(a.Limiter, a.Config.RateLimit.Max, a.Config.RateLimit.Window)
	a.Echo.GET("/limited", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}, limiter)

	for i := 1; i <= 5; i++ {
		rec := get(a, "/limited")
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := get(a, "/limited")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 6th attempt, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("RateLimit-Remaining") != "0" {
		t.Errorf("expected RateLimit-Remaining 0, got %q", rec.Header().Get("RateLimit-Remaining"))
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected fixed rejection message in body")
	}
}

func TestCORS_CredentialedOrigin(t *testing.T) {
	a := newTestApp()
	a.Echo.GET("/ok", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("expected allowed origin echoed, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected credentials allowed for whitelisted origin")
	}
}

