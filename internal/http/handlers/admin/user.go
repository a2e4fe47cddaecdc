package admin

import (
	"strings"

	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表（按角色/状态/关键字过滤）
func (h *Handler) ListUsers(c *gin.Context) {
	var q userListQuery
	if !handlershared.BindQuery(c, &q) {
		return
	}
	keyword := q.Search
	if strings.TrimSpace(keyword) == "" {
		keyword = q.Keyword
	}
	users, total, err := h.StatsService.ListUsers(repository.UserListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Role:     strings.TrimSpace(q.Role),
		Status:   strings.TrimSpace(q.Status),
		Keyword:  strings.TrimSpace(keyword),
	})
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, users, q.Pagination(total))
}

type userListQuery struct {
	handlershared.PageQuery
	Role    string `form:"role"`
	Status  string `form:"status"`
	Search  string `form:"search"`
	Keyword string `form:"keyword"`
}
