package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, ComparePassword(hash, "s3cret-pass"))
	assert.Error(t, ComparePassword(hash, "wrong-pass"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	pw, err := GenerateTemporaryPassword(16)
	require.NoError(t, err)
	assert.Len(t, pw, 16)

	other, err := GenerateTemporaryPassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, pw, other)
}

func TestGenerateTemporaryPasswordDefaultLength(t *testing.T) {
	pw, err := GenerateTemporaryPassword(0)
	require.NoError(t, err)
	assert.Len(t, pw, 12)
}
