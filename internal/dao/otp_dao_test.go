package dao

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOtpDao(t *testing.T) (*OtpDao, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOtpDao(client), mr
}

func TestRegistrationRoundTrip(t *testing.T) {
	d, _ := newTestOtpDao(t)
	ctx := context.Background()

	pending := &PendingRegistration{
		Email:        "a@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Văn",
		LastName:     "A",
		PhoneNumber:  "0901234567",
		Code:         "123456",
	}
	require.NoError(t, d.SaveRegistration(ctx, pending))

	got, err := d.GetRegistration(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	require.NoError(t, d.DeleteRegistration(ctx, "a@example.com"))
	_, err = d.GetRegistration(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestRegistrationOverwriteResetsCode(t *testing.T) {
	d, _ := newTestOtpDao(t)
	ctx := context.Background()

	first := &PendingRegistration{Email: "a@example.com", Code: "111111"}
	require.NoError(t, d.SaveRegistration(ctx, first))

	second := &PendingRegistration{Email: "a@example.com", Code: "222222"}
	require.NoError(t, d.SaveRegistration(ctx, second))

	got, err := d.GetRegistration(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
}

func TestRegistrationExpiry(t *testing.T) {
	d, mr := newTestOtpDao(t)
	ctx := context.Background()

	pending := &PendingRegistration{Email: "a@example.com", Code: "123456"}
	require.NoError(t, d.SaveRegistration(ctx, pending))

	// 有效期内可读
	mr.FastForward(OTPTTL - time.Minute)
	_, err := d.GetRegistration(ctx, "a@example.com")
	require.NoError(t, err)

	// 过期后视同不存在
	mr.FastForward(2 * time.Minute)
	_, err = d.GetRegistration(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestResetCodeRoundTrip(t *testing.T) {
	d, mr := newTestOtpDao(t)
	ctx := context.Background()

	_, err := d.GetResetCode(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, d.SaveResetCode(ctx, "a@example.com", "654321"))
	code, err := d.GetResetCode(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)

	mr.FastForward(OTPTTL + time.Second)
	_, err = d.GetResetCode(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestResetCodeDelete(t *testing.T) {
	d, _ := newTestOtpDao(t)
	ctx := context.Background()

	require.NoError(t, d.SaveResetCode(ctx, "a@example.com", "654321"))
	require.NoError(t, d.DeleteResetCode(ctx, "a@example.com"))
	_, err := d.GetResetCode(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}
