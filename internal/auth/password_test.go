package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("patient123")
	require.NoError(t, err)
	assert.NotEqual(t, "patient123", hash)

	ok, err := hasher.Verify(hash, "patient123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(hash, "patient124")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasherSaltsEachHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasherMalformedHash(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost).Verify("plain-text", "plain-text")
	assert.Error(t, err)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
