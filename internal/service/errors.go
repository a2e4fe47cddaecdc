package service

import "errors"

// 通用错误
var (
	ErrNotFound      = errors.New("not found")
	ErrFilterInvalid = errors.New("invalid filter")
)

// 用户与认证
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user blocked")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleInvalid        = errors.New("invalid role")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrResetTokenInvalid  = errors.New("password reset token invalid or expired")
	ErrProfileEmpty       = errors.New("nothing to update")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileInvalid     = errors.New("invalid profile data")
)

// 追踪与事件
var (
	ErrTrackingLinkNotFound  = errors.New("tracking link not found")
	ErrEventLinkRequired     = errors.New("token or tracking_link_id required")
	ErrEventAmountInvalid    = errors.New("event amount must not be negative")
	ErrCapAmountReached      = errors.New("offer cap amount reached")
	ErrCapConversionsReached = errors.New("offer cap conversions reached")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventStatusInvalid    = errors.New("event status must be approved or rejected")
	ErrEventNotModeratable   = errors.New("click events are not moderated")
	ErrEventAlreadyModerated = errors.New("event already moderated")
)

// 结算
var (
	ErrPayoutBelowMinimum        = errors.New("payout amount below minimum")
	ErrPayoutInsufficientBalance = errors.New("insufficient balance")
	ErrPayoutNotFound            = errors.New("payout not found")
	ErrPayoutStatusInvalid       = errors.New("invalid payout status")
	ErrPayoutStatusTransition    = errors.New("payout status transition not allowed")
)

// Offer 与参与申请
var (
	ErrOfferNotFound               = errors.New("offer not found")
	ErrOfferInvalid                = errors.New("invalid offer")
	ErrOfferStatusInvalid          = errors.New("invalid offer status")
	ErrOfferPayoutModelInvalid     = errors.New("invalid payout model")
	ErrLandingURLInvalid           = errors.New("landing url must be http or https")
	ErrParticipationExists         = errors.New("participation already exists")
	ErrParticipationNotFound       = errors.New("participation not found")
	ErrParticipationStatusInvalid  = errors.New("participation status must be approved or rejected")
	ErrParticipationAlreadyDecided = errors.New("participation already decided")
)

// 通知与统计
var (
	ErrNotificationNotFound      = errors.New("notification not found")
	ErrAnalyticsRangeInvalid     = errors.New("analytics range invalid")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
