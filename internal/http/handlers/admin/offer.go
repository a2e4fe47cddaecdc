package admin

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListOffers 全部 Offer（含 draft / closed）
func (h *Handler) ListOffers(c *gin.Context) {
	var q handlershared.OfferListQuery
	if !handlershared.BindQuery(c, &q) {
		return
	}
	offers, total, err := h.OfferService.ListOffers(q.Filter())
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, offers, q.Pagination(total))
}
