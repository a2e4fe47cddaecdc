package public

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListPublicOffers 公开 Offer 列表
func (h *Handler) ListPublicOffers(c *gin.Context) {
	var q handlershared.OfferListQuery
	if !handlershared.BindQuery(c, &q) {
		return
	}
	offers, total, err := h.OfferService.ListPublicOffers(q.Filter())
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, offers, q.Pagination(total))
}

// GetPublicOffer 公开 Offer 详情
func (h *Handler) GetPublicOffer(c *gin.Context) {
	offerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	offer, err := h.OfferService.GetPublicOffer(c.Request.Context(), offerID)
	if err != nil {
		respondWithMappedError(c, err, offerReadErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, offer)
}
