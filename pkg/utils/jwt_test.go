package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "z-novel-agent")

	token, err := m.GenerateToken("user-1", "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "z-novel-agent", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "z-novel-agent")

	token, err := m.GenerateToken("user-1", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", "iss").GenerateToken("user-1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", "iss").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTGarbageToken(t *testing.T) {
	m := NewJWTManager("secret", "iss")

	_, err := m.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("")
	assert.Error(t, err)
}
