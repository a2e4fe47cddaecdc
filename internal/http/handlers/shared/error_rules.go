package shared

import (
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/service"
)

// FilterErrorRules 列表过滤条件
var FilterErrorRules = []MappedError{
	{Target: service.ErrFilterInvalid, Code: response.CodeBadRequest, Key: "error.filter_invalid"},
}

// EventModerateErrorRules 事件审核（广告主与管理端共用）
var EventModerateErrorRules = []MappedError{
	{Target: service.ErrEventStatusInvalid, Code: response.CodeBadRequest, Key: "error.event_status_invalid"},
	{Target: service.ErrEventNotFound, Code: response.CodeNotFound, Key: "error.event_not_found"},
	{Target: service.ErrEventNotModeratable, Code: response.CodeBadRequest, Key: "error.event_not_moderatable"},
	{Target: service.ErrEventAlreadyModerated, Code: response.CodeBadRequest, Key: "error.event_already_moderated"},
	{Target: service.ErrEventAmountInvalid, Code: response.CodeBadRequest, Key: "error.event_amount_invalid"},
	{Target: service.ErrCapAmountReached, Code: response.CodeBadRequest, Key: "error.cap_amount_reached"},
	{Target: service.ErrCapConversionsReached, Code: response.CodeBadRequest, Key: "error.cap_conversions_reached"},
}

// ParticipationDecideErrorRules 参与申请审核（广告主与管理端共用）
var ParticipationDecideErrorRules = []MappedError{
	{Target: service.ErrParticipationStatusInvalid, Code: response.CodeBadRequest, Key: "error.participation_status_invalid"},
	{Target: service.ErrParticipationNotFound, Code: response.CodeNotFound, Key: "error.participation_not_found"},
	{Target: service.ErrParticipationAlreadyDecided, Code: response.CodeBadRequest, Key: "error.participation_already_decided"},
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
}
