package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plaintext secret into a salted, adaptive one-way
// digest and verifies plaintext against a stored digest.
type PasswordHasher interface {
	// Hash returns a self-describing digest: salt and cost factor are
	// embedded, so Verify needs no side channel.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the digest. A mismatch is
	// (false, nil); an error means the digest itself is malformed, which
	// indicates storage corruption rather than a wrong password.
	Verify(plaintext, digest string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt. The cost factor is
// tunable so the hash stays deliberately slow as hardware improves; bcrypt
// generates a fresh random salt per hash and compares in constant time.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost factor. Costs outside
// bcrypt's supported range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify implements PasswordHasher.
func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Anything else means the stored digest doesn't parse as bcrypt.
	return false, fmt.Errorf("malformed password digest: %w", err)
}
