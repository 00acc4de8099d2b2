package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "S3cret"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordCostFallback(t *testing.T) {
	// An out-of-range cost falls back to the bcrypt default instead
	// of failing registration.
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("same", 4)
	require.NoError(t, err)
	b, err := HashPassword("same", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "pw"))
}
