package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost mirrors the cost the original accounts were created with, so
// existing hashes keep verifying.
const bcryptCost = 10

// HashPassword generates a salted one-way hash of the plaintext. Each call
// salts independently, so hashing the same password twice yields different
// hashes.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash. bcrypt's comparison is constant-time; there is no decryption
// path.
func ComparePasswordAndHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
