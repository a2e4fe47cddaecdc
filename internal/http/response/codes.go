package response

import "net/http"

// 业务码直接复用 HTTP 状态码，0 表示成功
const (
	CodeOK                 = 0
	CodeBadRequest         = http.StatusBadRequest
	CodeUnauthorized       = http.StatusUnauthorized
	CodeForbidden          = http.StatusForbidden
	CodeNotFound           = http.StatusNotFound
	CodeConflict           = http.StatusConflict
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeInternal           = http.StatusInternalServerError
	CodeServiceUnavailable = http.StatusServiceUnavailable
)

// HTTPStatus 未知业务码按 500 处理
func HTTPStatus(code int) int {
	if code == CodeOK {
		return http.StatusOK
	}
	if code >= 400 && code < 600 && http.StatusText(code) != "" {
		return code
	}
	return http.StatusInternalServerError
}
