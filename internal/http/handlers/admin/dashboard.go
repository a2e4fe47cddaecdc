package admin

import (
	"github.com/realcpa-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboard 管理端仪表盘
func (h *Handler) GetDashboard(c *gin.Context) {
	data, err := h.StatsService.AdminDashboard()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, data)
}
