package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pfe-app/backend/config"
	"github.com/pfe-app/backend/internal/api"
)

// TokenIssuer signs and verifies bearer tokens. Verification is a pure
// computation and safe for concurrent use.
type TokenIssuer struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	if cfg.SecretKey == "" {
		panic("JWT Secret Key cannot be empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{
		secretKey: []byte(cfg.SecretKey),
		ttl:       ttl,
		issuer:    cfg.Issuer,
	}
}

// Issue signs a token carrying the subject's user ID, valid for the
// configured lifetime.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	tokenString, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a token string, returning the subject's user
// ID. A well-formed but past-expiry token yields api.ErrTokenExpired; any
// malformed, unsigned or tampered token yields api.ErrTokenInvalid.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", api.ErrTokenExpired
		}
		return "", api.ErrTokenInvalid
	}

	if !token.Valid || claims.UserID == "" {
		return "", api.ErrTokenInvalid
	}
	return claims.UserID, nil
}
