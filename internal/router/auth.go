package router

import (
	"context"
	"errors"
	"strings"

	"github.com/realcpa-hub/internal/authz"
	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDContextKey   = "user_id"
	userRoleContextKey = "user_role"
)

// UserAuthenticator 解析令牌并读取鉴权快照
type UserAuthenticator interface {
	ParseUserJWT(tokenString string) (*service.UserJWTClaims, error)
	ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error)
}

func bearerToken(c *gin.Context) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate 返回鉴权快照；失败时返回对应的错误消息 key
func authenticate(c *gin.Context, auth UserAuthenticator) (*service.UserJWTClaims, *cache.UserAuthState, string) {
	token := bearerToken(c)
	if auth == nil || token == "" {
		return nil, nil, "error.unauthorized"
	}
	claims, err := auth.ParseUserJWT(token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, nil, "error.token_expired"
	case err != nil || claims == nil || claims.UserID == 0:
		return nil, nil, "error.token_invalid"
	}

	state, err := auth.ResolveAuthState(c.Request.Context(), claims.UserID)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		logger.Errorw("user_auth_state_resolve_failed", "user_id", claims.UserID, "error", err)
	}
	switch {
	case err != nil || state == nil:
		return nil, nil, "error.token_invalid"
	case !strings.EqualFold(strings.TrimSpace(state.Status), constants.UserStatusActive):
		return nil, nil, "error.user_blocked"
	case claims.TokenVersion != state.TokenVersion:
		return nil, nil, "error.token_invalid"
	}
	return claims, state, ""
}

// UserJWTAuthMiddleware Bearer 令牌鉴权。角色取自鉴权快照而非令牌，
// 令牌版本落后或账号被封禁时返回 401
func UserJWTAuthMiddleware(auth UserAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, state, failKey := authenticate(c, auth)
		if failKey != "" {
			response.Abort(c, response.CodeUnauthorized, failKey)
			return
		}
		c.Set(userIDContextKey, claims.UserID)
		c.Set(userRoleContextKey, state.Role)
		c.Next()
	}
}

// RoleRBACMiddleware 按 (角色, 路由模板, 方法) 做 Casbin 鉴权
func RoleRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetString(userRoleContextKey))
		if authzService == nil || role == "" {
			if authzService == nil {
				logger.Errorw("rbac_service_unavailable")
			}
			response.Abort(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("rbac_enforce_failed", "role", role, "method", c.Request.Method, "resource", resource, "error", err)
			response.Abort(c, response.CodeInternal, "error.internal")
			return
		}
		if !allowed {
			logger.Warnw("rbac_permission_denied",
				"user_id", c.GetUint(userIDContextKey),
				"role", role,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Abort(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}
