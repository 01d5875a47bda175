package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures are split into two kinds for logging: an
// expired-but-correctly-signed token is routine, a bad signature is not.
// Callers must surface both to clients as the same generic auth failure.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload of a session token: the standard registered claims
// (subject = user ID, issued-at, expiry) plus the username.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenIssuer creates and verifies signed, stateless session tokens. Tokens
// are HMAC-signed with a process-wide secret; validity is purely signature
// plus expiry, with no server-side token state. Rotating the secret
// invalidates everything outstanding, which is acceptable for short-lived
// tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer signing with the given secret. Every
// issued token expires ttl after issuance.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// TTL returns the fixed token lifetime, which the cookie's Max-Age mirrors.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a new token asserting the given identity, valid from now
// until now plus the fixed TTL.
func (i *TokenIssuer) Issue(userID, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify decodes and checks a token string, returning its claims when the
// signature is valid and the expiry has not passed. Failures are reported
// as ErrTokenExpired or ErrTokenInvalid.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
