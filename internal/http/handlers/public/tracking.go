package public

import (
	"errors"
	"net/http"

	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/i18n"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackRedirect 追踪跳转：记录点击后 302 到落地页，错误以纯文本返回
func (h *Handler) TrackRedirect(c *gin.Context) {
	locale := i18n.ResolveLocale(c)
	landingURL, event, err := h.TrackingService.Resolve(c.Request.Context(), c.Param("token"), service.ClickMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})
	if err != nil {
		if errors.Is(err, service.ErrTrackingLinkNotFound) {
			response.PlainText(c, http.StatusNotFound, i18n.T(locale, "tracking.not_found"))
			return
		}
		requestLog(c).Errorw("tracking_redirect_failed", "error", err)
		response.PlainText(c, http.StatusInternalServerError, i18n.T(locale, "tracking.internal"))
		return
	}
	requestLog(c).Debugw("tracking_redirect", "event_id", event.ID, "tracking_link_id", event.TrackingLinkID)
	c.Redirect(http.StatusFound, landingURL)
}
