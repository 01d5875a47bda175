package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/mwrolfe/gatehouse/internal/apperror"
)

// mysqlDupEntry is MySQL error 1062 (ER_DUP_ENTRY), raised when an insert
// violates a unique index.
const mysqlDupEntry = 1062

// UserRepository defines the data access contract for principals.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type UserRepository interface {
	// Create inserts the user. Returns apperror.NewConflict when the
	// username is already taken; uniqueness is decided by the database's
	// unique index at insert time, so two racing registrations can never
	// both succeed.
	Create(ctx context.Context, user *User) error

	// FindByUsername retrieves a user by exact (case-sensitive) username.
	// Returns apperror.NewNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// UsernameExists reports whether a username is taken. Only a fast-path
	// optimization to skip hashing on obvious duplicates -- Create remains
	// the authority.
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// userRepository implements UserRepository with hand-written MySQL queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user row into the users table.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at)
	          VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("username is already taken")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByUsername retrieves a user by their username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, password_hash, created_at
	          FROM users WHERE username = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}

	return user, nil
}

// UsernameExists returns true if a user with the given username already exists.
func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking username existence: %w", err)
	}

	return exists, nil
}

// isDuplicateEntry reports whether err is a MySQL unique-index violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}
