package service

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/i18n"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer             = "realcpa-hub"
	defaultTokenLifetimeHrs = 168

	passwordResetAudience  = "password_reset"
	defaultResetTTLMinutes = 60
)

var selfServiceRoles = map[string]bool{
	constants.RoleAffiliate: true,
	constants.RoleSupplier:  true,
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	CompanyName string
	Role        string
	Locale      string
}

// ProfileInput 资料修改，nil 字段保持不变
type ProfileInput struct {
	Name        *string
	CompanyName *string
	Phone       *string
	Country     *string
	City        *string
	Locale      *string
}

// UserAuthService 注册、登录、密码与令牌校验
type UserAuthService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	emailService *EmailService
}

func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, emailService *EmailService) *UserAuthService {
	return &UserAuthService{cfg: cfg, userRepo: userRepo, emailService: emailService}
}

// UserJWTClaims 令牌载荷，TokenVersion 与用户记录不一致时令牌失效
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

func (s *UserAuthService) signingKey() []byte {
	return []byte(s.cfg.JWT.SecretKey)
}

func (s *UserAuthService) tokenLifetime() time.Duration {
	if s.cfg.JWT.ExpireHours > 0 {
		return time.Duration(s.cfg.JWT.ExpireHours) * time.Hour
	}
	return defaultTokenLifetimeHrs * time.Hour
}

// GenerateUserJWT 签发 HS256 令牌
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(s.tokenLifetime())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(s.signingKey())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserJWT 校验签名、签发方与有效期
func (s *UserAuthService) ParseUserJWT(raw string) (*UserJWTClaims, error) {
	claims := &UserJWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.signingKey(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Register 自助注册只开放推广者与广告主，成功后直接登录
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if !selfServiceRoles[role] {
		return nil, "", time.Time{}, ErrRoleInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLen, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	switch existing, err := s.userRepo.GetByEmail(email); {
	case err != nil:
		return nil, "", time.Time{}, err
	case existing != nil:
		return nil, "", time.Time{}, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Role:         role,
		Status:       constants.UserStatusActive,
		Locale:       i18n.NormalizeLocale(input.Locale),
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", role)
	return s.issueSession(user)
}

// Login 未知邮箱与密码错误返回同一个错误
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return nil, "", time.Time{}, ErrUserBlocked
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_last_login_update_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	return s.issueSession(user)
}

// issueSession 签发令牌并刷新鉴权快照
func (s *UserAuthService) issueSession(user *models.User) (*models.User, string, time.Time, error) {
	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Debugw("user_auth_state_cache_write_failed", "user_id", user.ID, "error", err)
	}
	return user, token, expiresAt, nil
}

func (s *UserAuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	switch {
	case err != nil:
		return nil, err
	case user == nil:
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ResolveAuthState 先读 Redis 快照，未命中时回源并回写
func (s *UserAuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	if state, hit, err := cache.GetUserAuthState(ctx, userID); err != nil {
		logger.Debugw("user_auth_state_cache_read_failed", "user_id", userID, "error", err)
	} else if hit && state != nil {
		return state, nil
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	state := cache.BuildUserAuthState(user)
	_ = cache.SetUserAuthState(ctx, state)
	return state, nil
}

// ChangePassword 登录态修改密码，旧令牌随之失效
func (s *UserAuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLen, newPassword); err != nil {
		return err
	}
	if err := s.setPassword(user, newPassword); err != nil {
		return err
	}
	logger.Infow("user_password_changed", "user_id", user.ID)
	return nil
}

// ForgotPassword 发送重置链接。邮箱不存在或账号被封禁时静默成功，返回空链接
func (s *UserAuthService) ForgotPassword(email string) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return "", err
	}
	if user == nil || !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return "", nil
	}

	token, err := s.signResetToken(user)
	if err != nil {
		return "", err
	}
	link := s.resetLink(token)
	if s.emailService != nil {
		locale := i18n.NormalizeLocale(user.Locale)
		sendErr := s.emailService.SendNotificationEmail(NotificationEmail{
			To:      user.Email,
			Subject: i18n.T(locale, "email.password_reset.subject"),
			Body:    i18n.Sprintf(locale, "email.password_reset.body", int(s.resetTTL().Minutes())),
			Link:    link,
		})
		if sendErr != nil {
			logger.Warnw("password_reset_email_failed", "user_id", user.ID, "error", sendErr)
		}
	}
	logger.Infow("password_reset_requested", "user_id", user.ID)
	return link, nil
}

// ResetPassword 凭重置令牌设置新密码；令牌在密码变更后作废
func (s *UserAuthService) ResetPassword(token, newPassword string) error {
	claims, err := s.parseResetToken(token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLen, newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return ErrResetTokenInvalid
	}
	if err := s.setPassword(user, newPassword); err != nil {
		return err
	}
	logger.Infow("user_password_reset", "user_id", user.ID)
	return nil
}

// UpdateProfile 更新基础资料，空白的名称与语言忽略
func (s *UserAuthService) UpdateProfile(userID uint, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updated := false
	assign := func(dst *string, src *string, allowEmpty bool) {
		if src == nil {
			return
		}
		trimmed := strings.TrimSpace(*src)
		if trimmed == "" && !allowEmpty {
			return
		}
		*dst = trimmed
		updated = true
	}
	assign(&user.Name, input.Name, false)
	assign(&user.CompanyName, input.CompanyName, true)
	assign(&user.Phone, input.Phone, true)
	assign(&user.Country, input.Country, true)
	assign(&user.City, input.City, true)
	if input.Locale != nil && strings.TrimSpace(*input.Locale) != "" {
		user.Locale = i18n.NormalizeLocale(*input.Locale)
		updated = true
	}
	if !updated {
		return nil, ErrProfileEmpty
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// setPassword 写入新哈希并递增令牌版本
func (s *UserAuthService) setPassword(user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.TokenVersion++
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(context.Background(), user.ID); err != nil {
		logger.Warnw("user_auth_state_cache_delete_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// passwordResetClaims 重置令牌，TokenVersion 不一致即视为已使用
type passwordResetClaims struct {
	UserID       uint   `json:"user_id"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// resetSigningKey 与会话令牌分开，重置令牌不能当作登录令牌使用
func (s *UserAuthService) resetSigningKey() []byte {
	return []byte(s.cfg.JWT.SecretKey + ":" + passwordResetAudience)
}

func (s *UserAuthService) resetTTL() time.Duration {
	if minutes := s.cfg.Security.PasswordReset.TTLMinutes; minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultResetTTLMinutes * time.Minute
}

func (s *UserAuthService) signResetToken(user *models.User) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, passwordResetClaims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Audience:  jwt.ClaimStrings{passwordResetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL())),
		},
	}).SignedString(s.resetSigningKey())
}

func (s *UserAuthService) parseResetToken(raw string) (*passwordResetClaims, error) {
	claims := &passwordResetClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims,
		func(*jwt.Token) (interface{}, error) { return s.resetSigningKey(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(passwordResetAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrResetTokenInvalid
	}
	return claims, nil
}

func (s *UserAuthService) resetLink(token string) string {
	base := strings.TrimSpace(s.cfg.Security.PasswordReset.URL)
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + "token=" + url.QueryEscape(token)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// IsTokenExpired 区分过期与其他校验失败
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
