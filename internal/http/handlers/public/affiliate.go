package public

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RequestPayoutRequest 提现请求
type RequestPayoutRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// JoinOffer 推广者申请接入 Offer
func (h *Handler) JoinOffer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	participation, err := h.ParticipationService.Join(userID, offerID)
	if err != nil {
		respondWithMappedError(c, err, joinErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Created(c, participation)
}

// ListMyOffers 推广者已申请的 Offer 与追踪地址
func (h *Handler) ListMyOffers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.ParticipationService.MyOffers(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, items)
}

// GetAffiliateStats 推广者概览
func (h *Handler) GetAffiliateStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.AffiliateStats(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, stats)
}

// GetAffiliateBalance 推广者余额
func (h *Handler) GetAffiliateBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	balance, err := h.PayoutService.Balance(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, balance)
}

// ListAffiliatePayouts 推广者提现记录
func (h *Handler) ListAffiliatePayouts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	payouts, err := h.PayoutService.ListAffiliatePayouts(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, payouts)
}

// RequestPayout 推广者发起提现
func (h *Handler) RequestPayout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payout, err := h.PayoutService.RequestPayout(c.Request.Context(), userID, *req.Amount)
	if err != nil {
		respondWithMappedError(c, err, payoutRequestErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Created(c, payout)
}

// GetAffiliateAnalytics 推广者分析报表
func (h *Handler) GetAffiliateAnalytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	from, err := handlershared.ParseDate(c.Query("from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.analytics_range_invalid", nil)
		return
	}
	to, err := handlershared.ParseDate(c.Query("to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.analytics_range_invalid", nil)
		return
	}
	result, err := h.StatsService.AffiliateAnalytics(userID, service.AnalyticsQuery{From: from, To: to})
	if err != nil {
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, result)
}
