package public

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口处理器入口
// 说明：覆盖追踪跳转、事件上报、认证以及推广者/广告主工作台 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

var (
	requestLog   = handlershared.RequestLog
	respondError = handlershared.RespondError
	currentUser  = handlershared.CurrentUserID
)

func parseIDParam(c *gin.Context) (uint, bool) {
	return handlershared.ParseIDParam(c, "id")
}
