package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123", 10)
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, VerifyPassword("password123", hash))
	assert.False(t, VerifyPassword("wrongpassword", hash))
}

func TestHashPasswordClampsCost(t *testing.T) {
	// out-of-range costs fall back to the default rather than erroring
	hash, err := HashPassword("password123", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword("password123", hash))
}

func TestHashPasswordUnsalted(t *testing.T) {
	h1, err := HashPassword("password123", 10)
	require.NoError(t, err)
	h2, err := HashPassword("password123", 10)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
