package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/mq"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
	"gorm.io/gorm"
)

// UserStore 用户存储接口，由 dao.UserDao 实现
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Updates(ctx context.Context, userID int64, updates map[string]interface{}) error
}

// OTPStore 验证码存储接口，由 dao.OtpDao 实现
type OTPStore interface {
	SaveRegistration(ctx context.Context, pending *dao.PendingRegistration) error
	GetRegistration(ctx context.Context, email string) (*dao.PendingRegistration, error)
	DeleteRegistration(ctx context.Context, email string) error
	SaveResetCode(ctx context.Context, email, code string) error
	GetResetCode(ctx context.Context, email string) (string, error)
	DeleteResetCode(ctx context.Context, email string) error
}

type AuthService struct {
	users     UserStore
	otps      OTPStore
	publisher mq.Publisher
	jwtUtil   *utils.JWTUtil
	now       func() time.Time
}

func NewAuthService(users UserStore, otps OTPStore, publisher mq.Publisher, jwtSecret string, jwtExpireHours int) *AuthService {
	return &AuthService{
		users:     users,
		otps:      otps,
		publisher: publisher,
		jwtUtil:   utils.NewJWTUtil(jwtSecret, jwtExpireHours),
		now:       time.Now,
	}
}

// UserView 对外返回的用户信息（不含凭证字段）
type UserView struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	PhoneNumber     string `json:"phoneNumber"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	CreatedAt       string `json:"createdAt"`
}

func toUserView(u *model.User) *UserView {
	return &UserView{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		PhoneNumber:     u.PhoneNumber,
		Role:            u.Role,
		Status:          u.Status,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

type LoginResponse struct {
	Code    int
	Message string
	Token   string
	User    *UserView
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	dbUser, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LoginResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &LoginResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	if !utils.CheckPassword(password, dbUser.PasswordHash) {
		return &LoginResponse{Code: e.ERROR_PASSWORD, Message: e.GetMsg(e.ERROR_PASSWORD)}, nil
	}
	if dbUser.Status != model.UserStatusActive {
		return &LoginResponse{Code: e.ERROR_AUTH, Message: "账号已停用"}, nil
	}

	token, err := s.jwtUtil.GenerateToken(dbUser.ID, dbUser.Email, dbUser.Role)
	if err != nil {
		return &LoginResponse{Code: e.ERROR_AUTH_TOKEN, Message: e.GetMsg(e.ERROR_AUTH_TOKEN)}, err
	}

	// 记录最近登录时间，失败不影响登录
	now := s.now()
	if uErr := s.users.Updates(ctx, dbUser.ID, map[string]interface{}{"last_login": now}); uErr != nil {
		logger.Warn("更新最近登录时间失败", "user_id", dbUser.ID, "err", uErr)
	}
	dbUser.LastLogin = &now

	return &LoginResponse{
		Code:    e.SUCCESS,
		Message: e.GetMsg(e.SUCCESS),
		Token:   token,
		User:    toUserView(dbUser),
	}, nil
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

type RegisterResponse struct {
	Code    int
	Message string
}

// Register 发起注册：缓存待注册信息并异步发送验证码邮件，验证通过后才落库
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(req.Email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return &RegisterResponse{Code: e.ERROR_EMAIL_EXISTS, Message: e.GetMsg(e.ERROR_EMAIL_EXISTS)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	code := utils.GenerateOTP()
	pending := &dao.PendingRegistration{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Code:         code,
	}
	if err := s.otps.SaveRegistration(ctx, pending); err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	s.publishOTPEmail(email, code, "register")
	return &RegisterResponse{Code: e.SUCCESS, Message: "验证码已发送"}, nil
}

// ResendRegisterOTP 重发注册验证码并重置有效期
func (s *AuthService) ResendRegisterOTP(ctx context.Context, email string) (*RegisterResponse, error) {
	email = strings.ToLower(email)
	pending, err := s.otps.GetRegistration(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrOTPNotFound) {
			return &RegisterResponse{Code: e.ERROR_OTP_NOT_FOUND, Message: e.GetMsg(e.ERROR_OTP_NOT_FOUND)}, nil
		}
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	code := utils.GenerateOTP()
	pending.Code = code
	if err := s.otps.SaveRegistration(ctx, pending); err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	s.publishOTPEmail(email, code, "register")
	return &RegisterResponse{Code: e.SUCCESS, Message: "验证码已重新发送"}, nil
}

// VerifyRegisterOTP 校验注册验证码，通过后创建用户并返回登录态
func (s *AuthService) VerifyRegisterOTP(ctx context.Context, email, code string) (*LoginResponse, error) {
	email = strings.ToLower(email)
	pending, err := s.otps.GetRegistration(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrOTPNotFound) {
			return &LoginResponse{Code: e.ERROR_OTP_EXPIRED, Message: e.GetMsg(e.ERROR_OTP_EXPIRED)}, nil
		}
		return &LoginResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if pending.Code != code {
		return &LoginResponse{Code: e.ERROR_OTP_INVALID, Message: e.GetMsg(e.ERROR_OTP_INVALID)}, nil
	}

	newUser := &model.User{
		Email:           email,
		PasswordHash:    pending.PasswordHash,
		FirstName:       pending.FirstName,
		LastName:        pending.LastName,
		FullName:        strings.TrimSpace(pending.FirstName + " " + pending.LastName),
		PhoneNumber:     pending.PhoneNumber,
		Role:            model.RoleUser,
		Status:          model.UserStatusActive,
		IsEmailVerified: true,
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, dao.ErrEmailTaken) {
			return &LoginResponse{Code: e.ERROR_EMAIL_EXISTS, Message: e.GetMsg(e.ERROR_EMAIL_EXISTS)}, nil
		}
		return &LoginResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	if dErr := s.otps.DeleteRegistration(ctx, email); dErr != nil {
		logger.Warn("清理注册验证码失败", "email", email, "err", dErr)
	}

	token, err := s.jwtUtil.GenerateToken(newUser.ID, newUser.Email, newUser.Role)
	if err != nil {
		return &LoginResponse{Code: e.ERROR_AUTH_TOKEN, Message: e.GetMsg(e.ERROR_AUTH_TOKEN)}, err
	}
	return &LoginResponse{
		Code:    e.SUCCESS,
		Message: e.GetMsg(e.SUCCESS),
		Token:   token,
		User:    toUserView(newUser),
	}, nil
}

// ForgotPassword 发送密码重置验证码
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*RegisterResponse, error) {
	email = strings.ToLower(email)
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RegisterResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	code := utils.GenerateOTP()
	if err := s.otps.SaveResetCode(ctx, email, code); err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	s.publishOTPEmail(email, code, "reset_password")
	return &RegisterResponse{Code: e.SUCCESS, Message: "重置验证码已发送"}, nil
}

// ResetPassword 校验重置验证码并更新密码
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (*RegisterResponse, error) {
	email = strings.ToLower(email)
	saved, err := s.otps.GetResetCode(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrOTPNotFound) {
			return &RegisterResponse{Code: e.ERROR_OTP_EXPIRED, Message: e.GetMsg(e.ERROR_OTP_EXPIRED)}, nil
		}
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if saved != code {
		return &RegisterResponse{Code: e.ERROR_OTP_INVALID, Message: e.GetMsg(e.ERROR_OTP_INVALID)}, nil
	}

	dbUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RegisterResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.users.Updates(ctx, dbUser.ID, map[string]interface{}{"password_hash": passwordHash}); err != nil {
		return &RegisterResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	if dErr := s.otps.DeleteResetCode(ctx, email); dErr != nil {
		logger.Warn("清理重置验证码失败", "email", email, "err", dErr)
	}
	return &RegisterResponse{Code: e.SUCCESS, Message: "密码已重置"}, nil
}

// publishOTPEmail 异步投递验证码邮件任务，失败仅记录日志
func (s *AuthService) publishOTPEmail(email, code, purpose string) {
	if s.publisher == nil {
		return
	}
	job := &mq.OTPEmailJob{Email: email, Code: code, Purpose: purpose}
	if err := mq.PublishOTPEmail(s.publisher, job); err != nil {
		logger.Warn("验证码邮件任务发布失败", "email", email, "purpose", purpose, "err", err)
	}
}
