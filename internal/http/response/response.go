package response

import (
	"net/http"

	"github.com/realcpa-hub/internal/i18n"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 列表响应，在 Response 基础上附带分页
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func envelope(code int, msg string, data interface{}) Response {
	return Response{StatusCode: code, Msg: msg, Data: data}
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(CodeOK, "success", data))
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope(CodeOK, "created", data))
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   envelope(CodeOK, "success", data),
		Pagination: pagination,
	})
}

// Error 错误响应，HTTP 状态码随业务码返回；data 中带上 request_id 方便排查
func Error(c *gin.Context, code int, msg string) {
	var data interface{}
	if id := requestID(c); id != "" {
		data = gin.H{"request_id": id}
	}
	c.JSON(HTTPStatus(code), envelope(code, msg, data))
}

// Abort 按请求语言翻译 key 后写出错误并终止后续 handler
func Abort(c *gin.Context, code int, key string, args ...interface{}) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	if len(args) > 0 {
		msg = i18n.Sprintf(locale, key, args...)
	}
	Error(c, code, msg)
	c.Abort()
}

// PlainText 纯文本响应（追踪跳转等非 JSON 场景）
func PlainText(c *gin.Context, status int, msg string) {
	c.Data(status, "text/plain; charset=utf-8", []byte(msg))
}

// BuildPagination 构造分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	id, _ := c.Get("request_id")
	s, _ := id.(string)
	return s
}
