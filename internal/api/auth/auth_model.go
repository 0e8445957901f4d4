package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the allowed roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// User is the persisted account record. PasswordHash never leaves the
// process through JSON.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims represents the custom claims included in the JWT access token.
type Claims struct {
	UserID               string `json:"user_id"`
	jwt.RegisteredClaims        // Embed standard claims (ExpiresAt, IssuedAt, Subject, etc.).
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // Optional role assignment (defaults server-side if empty).
}

// AuthResponse is the successful JSON response for register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
