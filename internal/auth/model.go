// Package auth is the credential-issuance and session-validation core of
// Gatehouse. It covers registration, login, logout, and session checking
// via signed, stateless, time-limited tokens carried in an HttpOnly cookie.
package auth

import (
	"time"
)

// User is the stored principal: one record per registered username. Created
// on register, read on login, never updated or deleted by this service.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the public projection of a User: what login and /me return
// to clients. The password hash never leaves the service.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Identity returns the client-safe view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the JSON body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest holds the JSON body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// Credentials is the validated username/password pair the handlers hand to
// the service for both register and login.
type Credentials struct {
	Username string
	Password string
}
