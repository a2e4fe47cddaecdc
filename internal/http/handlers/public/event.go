package public

import (
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IngestEventRequest 事件上报请求
type IngestEventRequest struct {
	Token          string           `json:"token"`
	TrackingLinkID uint             `json:"tracking_link_id"`
	EventType      string           `json:"event_type"`
	Amount         *decimal.Decimal `json:"amount"`
	ExternalID     string           `json:"external_id"`
}

// IngestEvent 外部系统上报线索/销售
func (h *Handler) IngestEvent(c *gin.Context) {
	var req IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	event, err := h.EventService.Ingest(c.Request.Context(), service.EventIngestInput{
		Token:          req.Token,
		TrackingLinkID: req.TrackingLinkID,
		EventType:      req.EventType,
		Amount:         req.Amount,
		ExternalID:     req.ExternalID,
	})
	if err != nil {
		respondEventIngestError(c, err)
		return
	}
	response.Created(c, event)
}
