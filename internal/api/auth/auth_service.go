package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pfe-app/backend/internal/api"
)

var _ AuthService = (*AuthServiceImpl)(nil)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const minPasswordLength = 8

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Register creates a new account and returns it with a fresh token.
	Register(ctx context.Context, name, email, password, role string) (*User, string, error)

	// Login authenticates credentials and returns the account with a fresh token.
	Login(ctx context.Context, email, password string) (*User, string, error)

	// GetCurrentUser resolves an already-verified subject ID to its account.
	GetCurrentUser(ctx context.Context, userID string) (*User, error)
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	tokens *TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo AuthRepo, tokens *TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new user. The role defaults to "user" when empty. The
// duplicate pre-check is advisory only; the unique constraint in the store is
// what actually guarantees uniqueness, and a constraint violation surfaces as
// api.ErrConflict from CreateUser.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password, role string) (*User, string, error) {
	l := s.logger.With(slog.String("method", "Register"))

	r := RoleUser
	if role != "" {
		r = Role(role)
		if !ValidRole(r) {
			return nil, "", api.ErrInvalidRole
		}
	}

	email = normalizeEmail(email)
	if err := validateNewUser(name, email, password); err != nil {
		return nil, "", err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", api.ErrConflict)
	} else if !errors.Is(err, api.ErrNotFound) {
		l.ErrorContext(ctx, "Duplicate pre-check failed", slog.Any("error", err))
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, hash, r)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return nil, "", err
		}
		l.ErrorContext(ctx, "User creation failed", slog.Any("error", err))
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	user.PasswordHash = ""
	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, token, nil
}

// Login authenticates a user. Unknown email and wrong password both return
// api.ErrUnauthenticated so callers cannot enumerate accounts.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*User, string, error) {
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, "", api.ErrUnauthenticated
		}
		l.ErrorContext(ctx, "User lookup failed", slog.Any("error", err))
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, "", api.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", api.ErrInternal, err)
	}

	user.PasswordHash = ""
	l.InfoContext(ctx, "User logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// GetCurrentUser is a thin lookup used after the Authenticate middleware has
// already verified identity.
func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, api.ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", api.ErrInternal, err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNewUser(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", api.ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: please use a valid email address", api.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", api.ErrValidation, minPasswordLength)
	}
	return nil
}
