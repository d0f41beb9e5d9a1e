package utils

import (
	"regexp"
	"strings"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername validates username format.
// Rules: 3-30 characters, letters, numbers, underscores only.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return apperrors.NewValidation("username", "username must be at least 3 characters")
	}

	if len(username) > MaxUsernameLength {
		return apperrors.NewValidation("username", "username cannot exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return apperrors.NewValidation("username", "username can only contain letters, numbers, and underscores")
	}

	return nil
}

// NormalizeUsername converts username to lowercase for storage, so the
// uniqueness constraint is case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
