package shared

import (
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 带 request_id 的日志
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString("request_id"); id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 写出本地化错误。err 非空时记录：服务端错误记 error，其余记 warn
func RespondError(c *gin.Context, code int, key string, err error) {
	if err != nil {
		log := RequestLog(c)
		fields := []interface{}{"code", code, "key", key, "path", c.FullPath(), "error", err}
		if response.HTTPStatus(code) >= 500 {
			log.Errorw("handler_error", fields...)
		} else {
			log.Warnw("handler_rejected", fields...)
		}
	}
	response.Abort(c, code, key)
}
