package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.True(t, hasher.Verify(hash, "Password123"))
	assert.False(t, hasher.Verify(hash, "password123"))
	assert.False(t, hasher.Verify("not-a-hash", "Password123"))
}

func TestBcryptHasher_LongMultibytePasswords(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	long := "Aa1" + strings.Repeat("é", 97)
	require.Len(t, []rune(long), 100)
	require.Greater(t, len(long), 72)

	hash, err := hasher.Hash(long)
	require.NoError(t, err)
	assert.True(t, hasher.Verify(hash, long))

	// same first 72 bytes, different tail
	assert.False(t, hasher.Verify(hash, long[:len(long)-2]+"e"))
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestRandomTokenGenerator(t *testing.T) {
	gen := RandomTokenGenerator{}
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, err := gen.NewToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "=")
		seen[token] = struct{}{}
	}
	assert.Len(t, seen, 50)
}
