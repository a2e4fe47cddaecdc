package admin

import (
	"strings"

	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPayouts 结算单列表
func (h *Handler) ListPayouts(c *gin.Context) {
	var q struct {
		handlershared.PageQuery
		AffiliateID uint   `form:"affiliate_id"`
		Status      string `form:"status"`
	}
	if !handlershared.BindQuery(c, &q) {
		return
	}
	payouts, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:        q.Page,
		PageSize:    q.PageSize,
		AffiliateID: q.AffiliateID,
		Status:      strings.TrimSpace(q.Status),
	})
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, payouts, q.Pagination(total))
}

// UpdatePayoutStatus 推进结算单状态
func (h *Handler) UpdatePayoutStatus(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	payoutID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req statusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.payout_status_invalid", err)
		return
	}
	payout, err := h.PayoutService.UpdatePayoutStatus(c.Request.Context(), payoutID, req.Status)
	if err != nil {
		handlershared.RespondMappedError(c, err, payoutStatusErrorRules, response.CodeInternal, "error.internal")
		return
	}
	requestLog(c).Infow("admin_payout_status_updated", "admin_id", adminID, "payout_id", payout.ID, "status", payout.Status)
	response.Success(c, payout)
}
