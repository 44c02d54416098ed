package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWTUtil("test-secret", 1)

	token, err := j.GenerateToken(42, "admin@restaurant.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin@restaurant.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTExpired(t *testing.T) {
	// 过期时间为 -1 小时，签出即过期
	j := NewJWTUtil("test-secret", -1)
	token, err := j.GenerateToken(1, "a@example.com", "USER")
	require.NoError(t, err)

	_, err = j.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTWrongSecret(t *testing.T) {
	j := NewJWTUtil("test-secret", 1)
	token, err := j.GenerateToken(1, "a@example.com", "USER")
	require.NoError(t, err)

	other := NewJWTUtil("another-secret", 1)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTGarbage(t *testing.T) {
	j := NewJWTUtil("test-secret", 1)
	_, err := j.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGenerateOTPFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, `^\d{6}$`, GenerateOTP())
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
