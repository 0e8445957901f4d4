package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pfe-app/backend/internal/api"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"

// AuthenticateHeader extracts and verifies the bearer credential from an
// Authorization header value, returning the verified subject ID. An absent
// or malformed header yields api.ErrMissingToken; verification failures pass
// through as api.ErrTokenInvalid or api.ErrTokenExpired.
func AuthenticateHeader(tokens *TokenIssuer, headerValue string) (string, error) {
	if headerValue == "" {
		return "", api.ErrMissingToken
	}

	headerParts := strings.Split(headerValue, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" || headerParts[1] == "" {
		return "", api.ErrMissingToken
	}

	return tokens.Verify(headerParts[1])
}

// Authenticate is middleware that validates the bearer token and injects the
// verified user ID into the request context. Requests failing verification
// never reach the protected handler.
func Authenticate(logger *slog.Logger, tokens *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			userID, err := AuthenticateHeader(tokens, r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, api.ErrMissingToken):
					l.WarnContext(ctx, "Missing or malformed Authorization header")
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				case errors.Is(err, api.ErrTokenExpired):
					l.WarnContext(ctx, "Token has expired")
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Token has expired")
				default:
					l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to accounts holding the given role. Runs
// AFTER the Authenticate middleware; the role is resolved from the store so
// a role change takes effect without re-issuing tokens.
func RequireRole(logger *slog.Logger, service AuthService, role Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, ok := GetUserIDFromContext(ctx)
			if !ok {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := service.GetCurrentUser(ctx, userID)
			if err != nil {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			if user.Role != role {
				logger.WarnContext(ctx, "Role check failed",
					slog.String("required_role", string(role)),
					slog.String("actual_role", string(user.Role)))
				api.ErrorResponse(w, r, http.StatusForbidden, "Access denied for your current role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the verified subject ID set by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
