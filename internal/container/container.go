package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/pfe-app/backend/app/db"
	"github.com/pfe-app/backend/config"
	"github.com/pfe-app/backend/internal/api/auth"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	AuthRepo    auth.AuthRepo
	AuthService auth.AuthService
	Tokens      *auth.TokenIssuer
	AuthHandler *auth.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database config: %w", err)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, fmt.Errorf("database not ready after waiting")
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	tokens := auth.NewTokenIssuer(cfg.JWT)
	authService := auth.NewAuthService(authRepo, tokens, logger)
	authHandler := auth.NewAuthHandlerImpl(authService, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		AuthRepo:    authRepo,
		AuthService: authService,
		Tokens:      tokens,
		AuthHandler: authHandler,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
