package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpRegisterKeyFmt = "otp:register:%s"
	otpResetKeyFmt    = "otp:reset:%s"

	// OTPTTL 验证码有效期
	OTPTTL = 15 * time.Minute
)

// ErrOTPNotFound 验证码不存在或已过期
var ErrOTPNotFound = errors.New("验证码不存在或已过期")

// PendingRegistration 待验证的注册信息，验证通过后才落库
type PendingRegistration struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber"`
	Code         string `json:"code"`
}

type OtpDao struct {
	rdb redis.UniversalClient
}

func NewOtpDao(rdb redis.UniversalClient) *OtpDao {
	return &OtpDao{
		rdb: rdb,
	}
}

// SaveRegistration 缓存待注册信息与验证码，覆盖旧记录并重置有效期
func (d *OtpDao) SaveRegistration(ctx context.Context, pending *PendingRegistration) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(otpRegisterKeyFmt, pending.Email)
	return d.rdb.Set(ctx, key, data, OTPTTL).Err()
}

// GetRegistration 读取待注册信息，不存在或过期返回 ErrOTPNotFound
func (d *OtpDao) GetRegistration(ctx context.Context, email string) (*PendingRegistration, error) {
	key := fmt.Sprintf(otpRegisterKeyFmt, email)
	data, err := d.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	var pending PendingRegistration
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

// DeleteRegistration 注册完成后清理缓存
func (d *OtpDao) DeleteRegistration(ctx context.Context, email string) error {
	return d.rdb.Del(ctx, fmt.Sprintf(otpRegisterKeyFmt, email)).Err()
}

// SaveResetCode 缓存密码重置验证码
func (d *OtpDao) SaveResetCode(ctx context.Context, email, code string) error {
	key := fmt.Sprintf(otpResetKeyFmt, email)
	return d.rdb.Set(ctx, key, code, OTPTTL).Err()
}

// GetResetCode 读取密码重置验证码，不存在或过期返回 ErrOTPNotFound
func (d *OtpDao) GetResetCode(ctx context.Context, email string) (string, error) {
	key := fmt.Sprintf(otpResetKeyFmt, email)
	code, err := d.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPNotFound
		}
		return "", err
	}
	return code, nil
}

// DeleteResetCode 重置完成后清理验证码
func (d *OtpDao) DeleteResetCode(ctx context.Context, email string) error {
	return d.rdb.Del(ctx, fmt.Sprintf(otpResetKeyFmt, email)).Err()
}
