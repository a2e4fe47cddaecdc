package public

import (
	"github.com/realcpa-hub/internal/constants"
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOfferRequest 创建 Offer 请求
type CreateOfferRequest struct {
	Title          string           `json:"title" binding:"required"`
	Description    string           `json:"description"`
	LandingURL     string           `json:"landing_url" binding:"required"`
	PayoutModel    string           `json:"payout_model"`
	PayoutAmount   *decimal.Decimal `json:"payout_amount"`
	Currency       string           `json:"currency"`
	HoldDays       *int             `json:"hold_days"`
	CapAmount      *decimal.Decimal `json:"cap_amount"`
	CapConversions *int             `json:"cap_conversions"`
}

// UpdateOfferRequest 部分更新 Offer 请求
type UpdateOfferRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	LandingURL     *string          `json:"landing_url"`
	PayoutModel    *string          `json:"payout_model"`
	PayoutAmount   *decimal.Decimal `json:"payout_amount"`
	Currency       *string          `json:"currency"`
	HoldDays       *int             `json:"hold_days"`
	CapAmount      *decimal.Decimal `json:"cap_amount"`
	CapConversions *int             `json:"cap_conversions"`
}

// StatusRequest 状态变更请求
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ModerateEventRequest 事件审核请求
type ModerateEventRequest struct {
	Status string           `json:"status" binding:"required"`
	Amount *decimal.Decimal `json:"amount"`
}

// ListSupplierOffers 广告主 Offer 列表
func (h *Handler) ListSupplierOffers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offers, err := h.OfferService.ListSupplierOffers(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, offers)
}

// CreateSupplierOffer 广告主创建 Offer（默认 draft）
func (h *Handler) CreateSupplierOffer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	offer, err := h.OfferService.CreateOffer(userID, service.CreateOfferInput{
		Title:          req.Title,
		Description:    req.Description,
		LandingURL:     req.LandingURL,
		PayoutModel:    req.PayoutModel,
		PayoutAmount:   req.PayoutAmount,
		Currency:       req.Currency,
		HoldDays:       req.HoldDays,
		CapAmount:      req.CapAmount,
		CapConversions: req.CapConversions,
	})
	if err != nil {
		respondOfferWriteError(c, err)
		return
	}
	response.Created(c, offer)
}

// UpdateSupplierOffer 广告主部分更新 Offer
func (h *Handler) UpdateSupplierOffer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	offer, err := h.OfferService.UpdateOffer(c.Request.Context(), userID, offerID, service.UpdateOfferInput{
		Title:          req.Title,
		Description:    req.Description,
		LandingURL:     req.LandingURL,
		PayoutModel:    req.PayoutModel,
		PayoutAmount:   req.PayoutAmount,
		Currency:       req.Currency,
		HoldDays:       req.HoldDays,
		CapAmount:      req.CapAmount,
		CapConversions: req.CapConversions,
	})
	if err != nil {
		respondOfferWriteError(c, err)
		return
	}
	response.Success(c, offer)
}

// UpdateSupplierOfferStatus 广告主切换 Offer 状态
func (h *Handler) UpdateSupplierOfferStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.offer_status_invalid", err)
		return
	}
	offer, err := h.OfferService.UpdateOfferStatus(c.Request.Context(), userID, offerID, req.Status)
	if err != nil {
		respondOfferWriteError(c, err)
		return
	}
	response.Success(c, offer)
}

// ListOfferAffiliates 广告主查看 Offer 下的推广者申请
func (h *Handler) ListOfferAffiliates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	rows, err := h.ParticipationService.ListOfferAffiliates(offerID, userID)
	if err != nil {
		respondWithMappedError(c, err, offerReadErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, rows)
}

// DecideSupplierParticipation 广告主审核推广者申请
func (h *Handler) DecideSupplierParticipation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	participationID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.participation_status_invalid", err)
		return
	}
	participation, err := h.ParticipationService.Decide(c.Request.Context(), service.DecideParticipationInput{
		ParticipationID: participationID,
		Status:          req.Status,
		ActorID:         userID,
		ActorRole:       constants.RoleSupplier,
	})
	if err != nil {
		respondParticipationDecideError(c, err)
		return
	}
	response.Success(c, participation)
}

// GetSupplierStats 广告主概览
func (h *Handler) GetSupplierStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.SupplierStats(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, stats)
}

// ListSupplierEvents 广告主名下 Offer 的事件
func (h *Handler) ListSupplierEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	q, filter, ok := handlershared.BindEventListQuery(c)
	if !ok {
		return
	}
	filter.SupplierID = userID
	events, total, err := h.EventService.ListEvents(filter)
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, events, q.Pagination(total))
}

// ModerateSupplierEvent 广告主审核事件
func (h *Handler) ModerateSupplierEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ModerateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.event_status_invalid", err)
		return
	}
	event, err := h.EventService.Moderate(c.Request.Context(), service.EventModerateInput{
		EventID:   eventID,
		Status:    req.Status,
		Amount:    req.Amount,
		ActorID:   userID,
		ActorRole: constants.RoleSupplier,
	})
	if err != nil {
		respondEventModerateError(c, err)
		return
	}
	response.Success(c, event)
}
