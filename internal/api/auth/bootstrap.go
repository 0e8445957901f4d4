package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pfe-app/backend/config"
	"github.com/pfe-app/backend/internal/api"
)

// EnsureAdmin reconciles the default admin account at startup. It is
// idempotent: after it returns, exactly one record at cfg.Email exists with
// role admin and a password hash verifying against cfg.Password, and the
// second run in a row performs no write.
func EnsureAdmin(ctx context.Context, repo AuthRepo, cfg config.AdminConfig, logger *slog.Logger) error {
	l := logger.With(slog.String("component", "EnsureAdmin"))

	existing, err := repo.GetUserByEmail(ctx, cfg.Email)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("admin lookup failed: %w", err)
		}

		hash, err := HashPassword(cfg.Password)
		if err != nil {
			return err
		}
		if _, err := repo.CreateUser(ctx, cfg.Name, cfg.Email, hash, RoleAdmin); err != nil {
			return fmt.Errorf("failed to create default admin account: %w", err)
		}
		l.InfoContext(ctx, "Created default admin account", slog.String("email", cfg.Email))
		return nil
	}

	updated := false

	if existing.Role != RoleAdmin {
		existing.Role = RoleAdmin
		updated = true
	}

	if err := ComparePasswordAndHash(cfg.Password, existing.PasswordHash); err != nil {
		hash, err := HashPassword(cfg.Password)
		if err != nil {
			return err
		}
		existing.PasswordHash = hash
		updated = true
	}

	if !updated {
		l.InfoContext(ctx, "Default admin account already exists and is up-to-date")
		return nil
	}

	if err := repo.UpdateUser(ctx, existing); err != nil {
		return fmt.Errorf("failed to update default admin account: %w", err)
	}
	l.InfoContext(ctx, "Updated default admin account", slog.String("email", cfg.Email))
	return nil
}
