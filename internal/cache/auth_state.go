package cache

import (
	"context"
	"time"

	"github.com/realcpa-hub/internal/models"
)

// UserAuthState 鉴权快照，JWT 中间件据此校验角色、状态与令牌版本
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

var authStates = NewJSONCache[UserAuthState]("auth:user", 10*time.Minute)

// BuildUserAuthState 由用户生成快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		Role:         user.Role,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return authStates.Get(ctx, userID)
}

func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return authStates.Set(ctx, state.UserID, state)
}

// DelUserAuthState 凭据变更后清除快照，下次请求回源
func DelUserAuthState(ctx context.Context, userID uint) error {
	return authStates.Del(ctx, userID)
}
