package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return dao.ErrEmailTaken
		}
	}
	f.nextID++
	u.ID = f.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Updates(ctx context.Context, id int64, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range updates {
		switch col {
		case "last_login":
			t := v.(time.Time)
			u.LastLogin = &t
		case "password_hash":
			u.PasswordHash = v.(string)
		case "status":
			u.Status = v.(string)
		}
	}
	return nil
}

type fakeOTPStore struct {
	mu            sync.Mutex
	registrations map[string]*dao.PendingRegistration
	resetCodes    map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{
		registrations: make(map[string]*dao.PendingRegistration),
		resetCodes:    make(map[string]string),
	}
}

func (f *fakeOTPStore) SaveRegistration(ctx context.Context, p *dao.PendingRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.registrations[p.Email] = &cp
	return nil
}

func (f *fakeOTPStore) GetRegistration(ctx context.Context, email string) (*dao.PendingRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.registrations[email]
	if !ok {
		return nil, dao.ErrOTPNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeOTPStore) DeleteRegistration(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registrations, email)
	return nil
}

func (f *fakeOTPStore) SaveResetCode(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCodes[email] = code
	return nil
}

func (f *fakeOTPStore) GetResetCode(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.resetCodes[email]
	if !ok {
		return "", dao.ErrOTPNotFound
	}
	return code, nil
}

func (f *fakeOTPStore) DeleteResetCode(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.resetCodes, email)
	return nil
}

func newTestAuthService() (*AuthService, *fakeUserStore, *fakeOTPStore, *fakePublisher) {
	users := newFakeUserStore()
	otps := newFakeOTPStore()
	pub := &fakePublisher{}
	svc := NewAuthService(users, otps, pub, "test-secret", 1)
	return svc, users, otps, pub
}

func seedUser(t *testing.T, users *fakeUserStore, email, password string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	seedUser(t, users, "a@example.com", "secret123")

	resp, err := svc.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "a@example.com", resp.User.Email)

	// 邮箱大小写不敏感
	resp, err = svc.Login(context.Background(), "A@Example.COM", "secret123")
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, resp.Code)
}

func TestLoginFailures(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	u := seedUser(t, users, "a@example.com", "secret123")

	resp, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_USER_NOT_EXISTS, resp.Code)

	resp, err = svc.Login(context.Background(), "a@example.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_PASSWORD, resp.Code)

	require.NoError(t, users.Updates(context.Background(), u.ID, map[string]interface{}{"status": model.UserStatusInactive}))
	resp, err = svc.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_AUTH, resp.Code)
}

func TestRegisterAndVerifyOTP(t *testing.T) {
	svc, users, otps, pub := newTestAuthService()

	reg, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "New@Example.com",
		Password:  "secret123",
		FirstName: "Văn",
		LastName:  "A",
	})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, reg.Code)

	// 验证前不落库，验证码邮件任务已投递
	_, err = users.GetByEmail(context.Background(), "new@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "email.otp", pub.published[0].key)

	pending, err := otps.GetRegistration(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, pending.Code)

	// 错误验证码
	resp, err := svc.VerifyRegisterOTP(context.Background(), "new@example.com", "000000")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_OTP_INVALID, resp.Code)

	// 正确验证码：创建用户并返回登录态
	resp, err = svc.VerifyRegisterOTP(context.Background(), "new@example.com", pending.Code)
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.True(t, resp.User.IsEmailVerified)
	assert.Equal(t, "Văn A", resp.User.FullName)

	// 验证码一次性
	_, err = otps.GetRegistration(context.Background(), "new@example.com")
	assert.ErrorIs(t, err, dao.ErrOTPNotFound)

	login, err := svc.Login(context.Background(), "new@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, login.Code)
}

func TestRegisterEmailTaken(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	seedUser(t, users, "a@example.com", "secret123")

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "a@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_EMAIL_EXISTS, resp.Code)
}

func TestVerifyRegisterOTPExpired(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	resp, err := svc.VerifyRegisterOTP(context.Background(), "ghost@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_OTP_EXPIRED, resp.Code)
}

func TestResendRegisterOTP(t *testing.T) {
	svc, _, otps, pub := newTestAuthService()

	resp, err := svc.ResendRegisterOTP(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_OTP_NOT_FOUND, resp.Code)

	_, err = svc.Register(context.Background(), &RegisterRequest{Email: "b@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err = svc.ResendRegisterOTP(context.Background(), "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, resp.Code)
	// 注册 + 重发各投递一封
	assert.Len(t, pub.published, 2)

	_, err = otps.GetRegistration(context.Background(), "b@example.com")
	require.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, users, otps, pub := newTestAuthService()
	seedUser(t, users, "a@example.com", "oldpass123")

	forgot, err := svc.ForgotPassword(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, forgot.Code)
	require.Len(t, pub.published, 1)
	assert.Contains(t, string(pub.published[0].body), `"purpose":"reset_password"`)

	code, err := otps.GetResetCode(context.Background(), "a@example.com")
	require.NoError(t, err)

	resp, err := svc.ResetPassword(context.Background(), "a@example.com", "bad-code", "newpass123")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_OTP_INVALID, resp.Code)

	resp, err = svc.ResetPassword(context.Background(), "a@example.com", code, "newpass123")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)

	// 旧密码失效，新密码可登录
	login, err := svc.Login(context.Background(), "a@example.com", "oldpass123")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_PASSWORD, login.Code)

	login, err = svc.Login(context.Background(), "a@example.com", "newpass123")
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, login.Code)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	resp, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_USER_NOT_EXISTS, resp.Code)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	seedUser(t, users, "a@example.com", "secret123")

	resp, err := svc.ResetPassword(context.Background(), "a@example.com", "123456", "newpass123")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_OTP_EXPIRED, resp.Code)
}
