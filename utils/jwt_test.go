package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.GenerateToken(7, "leo", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "leo", claims.Username)
}

func TestTokenSignerRejects(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	expired, err := signer.GenerateToken(1, "leo", -time.Minute)
	require.NoError(t, err)
	_, err = signer.ParseToken(expired)
	assert.Error(t, err)

	foreign, err := NewTokenSigner("other-secret").GenerateToken(1, "leo", time.Hour)
	require.NoError(t, err)
	_, err = signer.ParseToken(foreign)
	assert.Error(t, err)

	_, err = signer.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenBlacklistInMemory(t *testing.T) {
	bl := NewTokenBlacklist(nil)

	assert.False(t, bl.IsRevoked("a"))
	bl.Revoke("a", time.Now().Add(time.Hour))
	assert.True(t, bl.IsRevoked("a"))

	// already expired tokens are not stored
	bl.Revoke("b", time.Now().Add(-time.Second))
	assert.False(t, bl.IsRevoked("b"))
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
