package admin

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
)

var payoutStatusErrorRules = []handlershared.MappedError{
	{Target: service.ErrPayoutNotFound, Code: response.CodeNotFound, Key: "error.payout_not_found"},
	{Target: service.ErrPayoutStatusInvalid, Code: response.CodeBadRequest, Key: "error.payout_status_invalid"},
	{Target: service.ErrPayoutStatusTransition, Code: response.CodeBadRequest, Key: "error.payout_status_transition"},
}

func respondListError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.FilterErrorRules, response.CodeInternal, "error.internal")
}
