package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", ExpiryHours: 1}
	userID := uuid.New()

	token, expiresAt, err := GenerateToken(userID, "owner", cfg)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	gotID, claims, err := ParseToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "owner", claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateToken(uuid.New(), "user", JWTConfig{Secret: "one"})
	require.NoError(t, err)

	_, _, err = ParseToken(token, JWTConfig{Secret: "two"})
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, _, err := ParseToken("not.a.token", JWTConfig{Secret: "one"})
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
