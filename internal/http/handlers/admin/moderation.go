package admin

import (
	"github.com/realcpa-hub/internal/constants"
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type statusPayload struct {
	Status string `json:"status" binding:"required"`
}

type moderateEventPayload struct {
	Status string           `json:"status" binding:"required"`
	Amount *decimal.Decimal `json:"amount"`
}

// ListPendingParticipations 待审核参与申请
func (h *Handler) ListPendingParticipations(c *gin.Context) {
	rows, err := h.ParticipationService.ListPending()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, rows)
}

// DecideParticipation 管理员审核参与申请（不限 Offer 归属）
func (h *Handler) DecideParticipation(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	participationID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req statusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.participation_status_invalid", err)
		return
	}
	participation, err := h.ParticipationService.Decide(c.Request.Context(), service.DecideParticipationInput{
		ParticipationID: participationID,
		Status:          req.Status,
		ActorID:         adminID,
		ActorRole:       constants.RoleAdmin,
	})
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.ParticipationDecideErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, participation)
}

// ListEvents 全部事件
func (h *Handler) ListEvents(c *gin.Context) {
	q, filter, ok := handlershared.BindEventListQuery(c)
	if !ok {
		return
	}
	events, total, err := h.EventService.ListEvents(filter)
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, events, q.Pagination(total))
}

// ModerateEvent 管理员审核事件
func (h *Handler) ModerateEvent(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req moderateEventPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.event_status_invalid", err)
		return
	}
	event, err := h.EventService.Moderate(c.Request.Context(), service.EventModerateInput{
		EventID:   eventID,
		Status:    req.Status,
		Amount:    req.Amount,
		ActorID:   adminID,
		ActorRole: constants.RoleAdmin,
	})
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.EventModerateErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, event)
}
