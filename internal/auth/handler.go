package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// Handler handles HTTP requests for authentication (register, login,
// logout, me). Handlers are thin: they bind and validate the request, call
// the service, and shape the JSON response. No business logic lives here.
type Handler struct {
	service AuthService
	cookies *CookieManager
}

// NewHandler creates a new auth handler with the given dependencies.
func NewHandler(service AuthService, cookies *CookieManager) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// Register creates a new account (POST /register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if msg := validateRegisterRequest(&req); msg != "" {
		return apperror.NewValidation(msg)
	}

	if _, err := h.service.Register(c.Request().Context(), Credentials{
		Username: req.Username,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "user created",
	})
}

// Login authenticates and sets the session cookie (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return apperror.NewValidation("username and password are required")
	}

	token, user, err := h.service.Login(c.Request().Context(), Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Attach(c, token)

	return c.JSON(http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user.Identity(),
	})
}

// Logout clears the session cookie (POST /logout). Tokens are stateless, so
// there is nothing server-side to revoke; logout is idempotent and always
// succeeds, session or not.
func (h *Handler) Logout(c echo.Context) error {
	h.cookies.Clear(c)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logout successful",
	})
}

// Me returns the authenticated identity (GET /me). Requires the session
// middleware.
func (h *Handler) Me(c echo.Context) error {
	identity := CurrentIdentity(c)
	if identity == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": identity,
	})
}

// validateRegisterRequest checks the registration payload shape before any
// hashing or storage work. Returns an error message or empty string.
func validateRegisterRequest(req *RegisterRequest) string {
	if req.Username == "" {
		return "username is required"
	}
	if len(req.Username) < 3 {
		return "username must be at least 3 characters"
	}
	if len(req.Username) > 32 {
		return "username must be at most 32 characters"
	}
	if req.Password == "" {
		return "password is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if len(req.Password) > 128 {
		return "password must be at most 128 characters"
	}
	return ""
}
