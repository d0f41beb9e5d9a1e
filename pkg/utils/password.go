package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the mobile clients were tuned
// against. Deliberately slow; hashing dominates signup/login latency.
const DefaultBcryptCost = 12

// HashPassword hashes a raw password with bcrypt at the given cost. A cost
// outside bcrypt's supported range falls back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a raw password against a stored bcrypt hash.
// bcrypt's comparison is constant-time.
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
