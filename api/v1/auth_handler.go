package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 邮箱密码登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"token": resp.Token,
		"user":  resp.User,
	})
}

// Register 发起注册并发送验证码
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"otp" binding:"required"`
}

// VerifyOTP 校验注册验证码并完成注册
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.VerifyRegisterOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"token": resp.Token,
		"user":  resp.User,
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP 重发注册验证码
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.ResendRegisterOTP(c.Request.Context(), req.Email)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// ForgotPassword 发送密码重置验证码
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ResetPassword 校验验证码并重置密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// RegisterRoutes 注册认证相关路由（免token）
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/resend-otp", h.ResendOTP)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}
}
