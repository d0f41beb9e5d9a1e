package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"janedoe", "jane_doe", "Jane123", "abc", "a23456789012345678901234567890"}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "ab", "jane doe", "jane-doe", "jane.doe", "jané", "a234567890123456789012345678901"}
	for _, u := range invalid {
		err := ValidateUsername(u)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr, u)
		assert.Equal(t, "username", verr.Field)
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "janedoe", NormalizeUsername("  JaneDoe "))
}
