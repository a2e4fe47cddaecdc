package public

import (
	"time"

	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/i18n"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 推广者/广告主注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Role:        req.Role,
		Locale:      i18n.ResolveLocale(c),
	})
	if err != nil {
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Created(c, buildAuthPayload(user, token, expiresAt))
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, buildAuthPayload(user, token, expiresAt))
}

// ForgotPasswordRequest 找回密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest 重置密码请求，兼容 password 字段
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword"`
	Password    string `json:"password"`
}

// ForgotPassword 发送重置链接，不暴露邮箱是否存在
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.email_invalid", err)
		return
	}
	link, err := h.UserAuthService.ForgotPassword(req.Email)
	if err != nil {
		respondWithMappedError(c, err, resetPasswordErrorRules, response.CodeInternal, "error.internal")
		return
	}
	payload := gin.H{"message": i18n.T(i18n.ResolveLocale(c), "auth.password_reset_sent")}
	if link != "" && h.Config.Security.PasswordReset.ExposeLink {
		payload["resetLink"] = link
	}
	response.Success(c, payload)
}

// ResetPassword 凭链接中的令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.reset_token_invalid", err)
		return
	}
	password := req.NewPassword
	if password == "" {
		password = req.Password
	}
	if err := h.UserAuthService.ResetPassword(req.Token, password); err != nil {
		respondWithMappedError(c, err, resetPasswordErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"message": i18n.T(i18n.ResolveLocale(c), "auth.password_changed")})
}

func buildAuthPayload(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"name":         user.Name,
			"company_name": user.CompanyName,
			"role":         user.Role,
			"locale":       user.Locale,
		},
		"token":      token,
		"expires_at": expiresAt,
	}
}
