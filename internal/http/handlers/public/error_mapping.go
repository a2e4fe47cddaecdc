package public

import (
	handlershared "github.com/realcpa-hub/internal/http/handlers/shared"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	return handlershared.ConcatMappedErrors(groups...)
}

var eventIngestErrorRules = []mappedHandlerError{
	{Target: service.ErrTrackingLinkNotFound, Code: response.CodeNotFound, Key: "error.tracking_link_not_found"},
	{Target: service.ErrEventLinkRequired, Code: response.CodeBadRequest, Key: "error.event_link_required"},
	{Target: service.ErrEventAmountInvalid, Code: response.CodeBadRequest, Key: "error.event_amount_invalid"},
	{Target: service.ErrCapAmountReached, Code: response.CodeBadRequest, Key: "error.cap_amount_reached"},
	{Target: service.ErrCapConversionsReached, Code: response.CodeBadRequest, Key: "error.cap_conversions_reached"},
	{Target: service.ErrOfferNotFound, Code: response.CodeBadRequest, Key: "error.offer_not_found"},
}

var registerErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrRoleInvalid, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest, Key: "error.password_too_short"},
}

var loginErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.login_invalid"},
	{Target: service.ErrUserBlocked, Code: response.CodeUnauthorized, Key: "error.user_blocked"},
}

var changePasswordErrorRules = []mappedHandlerError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest, Key: "error.password_too_short"},
}

var resetPasswordErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrResetTokenInvalid, Code: response.CodeBadRequest, Key: "error.reset_token_invalid"},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest, Key: "error.password_too_short"},
}

var profileErrorRules = []mappedHandlerError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrProfileNotFound, Code: response.CodeNotFound, Key: "error.profile_not_found"},
	{Target: service.ErrProfileEmpty, Code: response.CodeBadRequest, Key: "error.profile_empty"},
	{Target: service.ErrProfileInvalid, Code: response.CodeBadRequest, Key: "error.profile_invalid"},
}

var offerReadErrorRules = []mappedHandlerError{
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
}

var offerWriteErrorRules = []mappedHandlerError{
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
	{Target: service.ErrOfferInvalid, Code: response.CodeBadRequest, Key: "error.offer_invalid"},
	{Target: service.ErrOfferStatusInvalid, Code: response.CodeBadRequest, Key: "error.offer_status_invalid"},
	{Target: service.ErrOfferPayoutModelInvalid, Code: response.CodeBadRequest, Key: "error.offer_payout_model_invalid"},
	{Target: service.ErrLandingURLInvalid, Code: response.CodeBadRequest, Key: "error.landing_url_invalid"},
}

var joinErrorRules = []mappedHandlerError{
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
	{Target: service.ErrParticipationExists, Code: response.CodeBadRequest, Key: "error.participation_exists"},
}

var payoutRequestErrorRules = []mappedHandlerError{
	{Target: service.ErrPayoutBelowMinimum, Code: response.CodeBadRequest, Key: "error.payout_below_minimum"},
	{Target: service.ErrPayoutInsufficientBalance, Code: response.CodeBadRequest, Key: "error.payout_insufficient_balance"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
}

var analyticsErrorRules = []mappedHandlerError{
	{Target: service.ErrAnalyticsRangeInvalid, Code: response.CodeBadRequest, Key: "error.analytics_range_invalid"},
}

var notificationErrorRules = []mappedHandlerError{
	{Target: service.ErrNotificationNotFound, Code: response.CodeNotFound, Key: "error.notification_not_found"},
}

func respondEventIngestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, eventIngestErrorRules, response.CodeInternal, "error.internal")
}

func respondEventModerateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.EventModerateErrorRules, response.CodeInternal, "error.internal")
}

func respondParticipationDecideError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ParticipationDecideErrorRules, response.CodeInternal, "error.internal")
}

func respondOfferWriteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, offerWriteErrorRules, response.CodeInternal, "error.internal")
}

func respondListError(c *gin.Context, err error, extra ...[]mappedHandlerError) {
	groups := append([][]mappedHandlerError{handlershared.FilterErrorRules}, extra...)
	respondWithMappedError(c, err, concatMappedHandlerErrors(groups...), response.CodeInternal, "error.internal")
}
