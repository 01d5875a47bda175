package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// newTestMemoryStore returns a MemoryStore with a controllable clock.
// The janitor goroutine is harmless in tests (it only ever deletes
// long-expired entries).
func newTestMemoryStore(start time.Time) (*MemoryStore, *time.Time) {
	now := start
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStore_CountsWithinWindow(t *testing.T) {
	s, _ := newTestMemoryStore(time.Unix(1000, 0))

	for i := 1; i <= 6; i++ {
		count, _, err := s.Incr(context.Background(), "203.0.113.7", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != i {
			t.Fatalf("attempt %d: expected count %d, got %d", i, i, count)
		}
	}
}

func TestMemoryStore_WindowReset(t *testing.T) {
	s, now := newTestMemoryStore(time.Unix(1000, 0))

	for i := 0; i < 6; i++ {
		s.Incr(context.Background(), "203.0.113.7", time.Minute)
	}

	// Advance past the window: the counter must start over.
	*now = now.Add(61 * time.Second)

	count, reset, err := s.Incr(context.Background(), "203.0.113.7", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected fresh window count 1, got %d", count)
	}
	if got := reset.Sub(*now); got != time.Minute {
		t.Errorf("expected reset one window out, got %s", got)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s, _ := newTestMemoryStore(time.Unix(1000, 0))

	for i := 0; i < 5; i++ {
		s.Incr(context.Background(), "203.0.113.7", time.Minute)
	}

	count, _, _ := s.Incr(context.Background(), "198.51.100.9", time.Minute)
	if count != 1 {
		t.Errorf("expected separate counter per key, got %d", count)
	}
}

func TestRedisStore_CountsAndExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client)

	for i := 1; i <= 6; i++ {
		count, _, err := s.Incr(context.Background(), "203.0.113.7", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != i {
			t.Fatalf("attempt %d: expected count %d, got %d", i, i, count)
		}
	}

	// Let the window TTL elapse: the next attempt starts a new window.
	mr.FastForward(61 * time.Second)

	count, _, err := s.Incr(context.Background(), "203.0.113.7", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected fresh window count 1, got %d", count)
	}
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mr.Close()

	s := NewRedisStore(client)
	_, _, err := s.Incr(context.Background(), "203.0.113.7", time.Minute)
	if err == nil {
		t.Fatal("expected error when redis is down")
	}
}

// --- Middleware ---

// failingStore always errors, for the fail-open path.
type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

// runRequest runs one request through the middleware and returns the
// recorder and the handler error.
func runRequest(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, h(c)
}

func TestMiddleware_AllowsUnderLimit(t *testing.T) {
	s, _ := newTestMemoryStore(time.Unix(1000, 0))
	mw := Middleware(s, 5, time.Minute)

	for i := 0; i < 5; i++ {
		rec, err := runRequest(t, mw)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if rec.Header().Get("RateLimit-Limit") != "5" {
			t.Errorf("expected RateLimit-Limit 5, got %q", rec.Header().Get("RateLimit-Limit"))
		}
	}
}

func TestMiddleware_RejectsSixthAttempt(t *testing.T) {
	s, _ := newTestMemoryStore(time.Unix(1000, 0))
	mw := Middleware(s, 5, time.Minute)

	for i := 0; i < 5; i++ {
		if _, err := runRequest(t, mw); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rec, err := runRequest(t, mw)
	if err == nil {
		t.Fatal("expected rejection on 6th attempt")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", appErr.Code)
	}
	if rec.Header().Get("RateLimit-Remaining") != "0" {
		t.Errorf("expected RateLimit-Remaining 0, got %q", rec.Header().Get("RateLimit-Remaining"))
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on rejection")
	}
}

func TestMiddleware_AllowsAfterWindowReset(t *testing.T) {
	s, now := newTestMemoryStore(time.Unix(1000, 0))
	mw := Middleware(s, 5, time.Minute)

	for i := 0; i < 6; i++ {
		runRequest(t, mw)
	}

	*now = now.Add(61 * time.Second)

	_, err := runRequest(t, mw)
	if err != nil {
		t.Fatalf("expected request allowed after window reset, got %v", err)
	}
}

func TestMiddleware_FailsOpenOnStoreError(t *testing.T) {
	mw := Middleware(failingStore{}, 5, time.Minute)

	rec, err := runRequest(t, mw)
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
