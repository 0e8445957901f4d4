package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pfe-app/backend/internal/api"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// pgUniqueViolation is the SQLSTATE the users_email_lower_idx index raises.
const pgUniqueViolation = "23505"

// PGXQuerier is the subset of pgxpool.Pool the repository needs. pgxmock
// implements it too.
type PGXQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuthRepo is the credential store. Email uniqueness is guaranteed by the
// store's unique constraint; callers may pre-check but must handle
// api.ErrConflict from CreateUser regardless.
type AuthRepo interface {
	// CreateUser inserts a new record. passwordHash must already be hashed.
	CreateUser(ctx context.Context, name, email, passwordHash string, role Role) (*User, error)
	// GetUserByEmail returns the record including its password hash.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByID returns the record without its password hash.
	GetUserByID(ctx context.Context, userID string) (*User, error)
	// UpdateUser persists role and password hash changes.
	UpdateUser(ctx context.Context, user *User) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     PGXQuerier
}

func NewPostgresAuthRepo(pool *pgxpool.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     pool,
	}
}

// newPostgresAuthRepoWithQuerier exists for tests that substitute pgxmock.
func newPostgresAuthRepoWithQuerier(db PGXQuerier, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{logger: logger, db: db}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string, role Role) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, role)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("email already registered: %w", api.ErrConflict)
		}
		return nil, fmt.Errorf("create user: db insert failed: %w", err)
	}

	return user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
         FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}
	user.Role = Role(role)

	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*User, error) {
	var user User
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, role, created_at, updated_at
         FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}
	user.Role = Role(role)

	return &user, nil
}

func (r *PostgresAuthRepo) UpdateUser(ctx context.Context, user *User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $1, password_hash = $2, updated_at = $3 WHERE id = $4`,
		string(user.Role), user.PasswordHash, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("update user: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
