package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// invalidCredentialsMessage is shared by every login failure mode. Unknown
// username and wrong password must be indistinguishable to the client.
const invalidCredentialsMessage = "invalid username or password"

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	// Register creates a new principal, or fails with a 409 conflict when
	// the username is taken.
	Register(ctx context.Context, creds Credentials) (*User, error)

	// Login verifies the credentials and, on success, returns a freshly
	// issued session token and the authenticated user.
	Login(ctx context.Context, creds Credentials) (token string, user *User, err error)

	// VerifyToken checks a session token and returns its claims. Used by
	// the session middleware on authenticated routes.
	VerifyToken(token string) (*Claims, error)
}

// authService implements AuthService over a user repository, a password
// hasher, and a token issuer. Logout has no server-side half: tokens are
// stateless, so discarding the cookie is the whole operation and lives in
// the HTTP handler.
type authService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer

	// dummyDigest is verified against on the unknown-username login path so
	// that path pays the same hashing cost as a wrong password. Without it,
	// the fast not-found return would let a caller distinguish unknown
	// usernames by response timing.
	dummyDigest string
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens *TokenIssuer) (AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("preparing dummy digest: %w", err)
	}

	return &authService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		dummyDigest: dummy,
	}, nil
}

// Register creates a new user account. The existence check is only a
// fast-path to skip hashing on obvious duplicates; the unique index behind
// repo.Create is what actually guarantees uniqueness when two registrations
// race.
func (s *authService) Register(ctx context.Context, creds Credentials) (*User, error) {
	exists, err := s.repo.UsernameExists(ctx, creds.Username)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking username: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("username is already taken")
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// A conflict here means we lost the race against a concurrent
		// registration of the same username -- pass it through as-is.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 409 {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a username/password pair and issues a session token.
func (s *authService) Login(ctx context.Context, creds Credentials) (string, *User, error) {
	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			// Burn the same hashing cost as a real comparison, then fail
			// with the same generic message as a wrong password.
			s.hasher.Verify(creds.Password, s.dummyDigest)
			return "", nil, apperror.NewUnauthorized(invalidCredentialsMessage)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		// The stored digest is malformed -- storage corruption, not a
		// client mistake.
		return "", nil, apperror.NewInternal(fmt.Errorf("verifying password for user %s: %w", user.ID, err))
	}
	if !ok {
		return "", nil, apperror.NewUnauthorized(invalidCredentialsMessage)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return token, user, nil
}

// VerifyToken checks a session token against the process-wide secret.
func (s *authService) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}
