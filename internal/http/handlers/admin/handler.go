package admin

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于管理端 API（仪表盘、审核、结算）。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
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
