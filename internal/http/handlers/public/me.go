package public

import (
	"encoding/json"
	"strconv"

	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/i18n"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser 当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(userID)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
		}, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, user)
}

// UpdateProfileRequest 基础资料，未提供的字段不修改
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"companyName"`
	Phone       *string `json:"phone"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Locale      *string `json:"locale"`
}

// ChangePasswordRequest 修改密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AffiliateProfileRequest 推广者档案
type AffiliateProfileRequest struct {
	PayoutDetails       *json.RawMessage `json:"payoutDetails"`
	TrafficSources      *string          `json:"trafficSources"`
	Notes               *string          `json:"notes"`
	NotifyNews          *bool            `json:"notifyNews"`
	NotifySystem        *bool            `json:"notifySystem"`
	NotifyParticipation *bool            `json:"notifyParticipation"`
	NotifyPayouts       *bool            `json:"notifyPayouts"`
}

// SupplierProfileRequest 广告主档案
type SupplierProfileRequest struct {
	LegalEntity *string `json:"legalEntity"`
	INN         *string `json:"inn"`
	KPP         *string `json:"kpp"`
	VatID       *string `json:"vatId"`
	Website     *string `json:"website"`
	PayoutTerms *string `json:"payoutTerms"`
}

// UpdateCurrentUser 修改基础资料
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(userID, service.ProfileInput{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Country:     req.Country,
		City:        req.City,
		Locale:      req.Locale,
	})
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, user)
}

// ChangePassword 修改密码，成功后需要重新登录
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithMappedError(c, err, changePasswordErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"message": i18n.T(i18n.ResolveLocale(c), "auth.password_changed")})
}

// GetAffiliateProfile 推广者档案
func (h *Handler) GetAffiliateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.ProfileService.GetAffiliateProfile(userID)
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, profile)
}

// UpdateAffiliateProfile 保存推广者档案（不存在时创建）
func (h *Handler) UpdateAffiliateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AffiliateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.profile_invalid", err)
		return
	}
	profile, err := h.ProfileService.UpdateAffiliateProfile(userID, service.AffiliateProfileInput{
		PayoutDetails:       req.PayoutDetails,
		TrafficSources:      req.TrafficSources,
		Notes:               req.Notes,
		NotifyNews:          req.NotifyNews,
		NotifySystem:        req.NotifySystem,
		NotifyParticipation: req.NotifyParticipation,
		NotifyPayouts:       req.NotifyPayouts,
	})
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, profile)
}

// GetSupplierProfile 广告主档案
func (h *Handler) GetSupplierProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.ProfileService.GetSupplierProfile(userID)
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, profile)
}

// UpdateSupplierProfile 保存广告主档案（不存在时创建）
func (h *Handler) UpdateSupplierProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SupplierProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.profile_invalid", err)
		return
	}
	profile, err := h.ProfileService.UpdateSupplierProfile(userID, service.SupplierProfileInput{
		LegalEntity: req.LegalEntity,
		INN:         req.INN,
		KPP:         req.KPP,
		VatID:       req.VatID,
		Website:     req.Website,
		PayoutTerms: req.PayoutTerms,
	})
	if err != nil {
		respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, profile)
}

// ListMyNotifications 站内通知列表
func (h *Handler) ListMyNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unreadOnly") == "true" || c.Query("unread_only") == "true"

	result, err := h.NotificationService.List(userID, unreadOnly, limit, offset)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, result)
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := parseIDParam(c)
	if !ok {
		return
	}
	notification, err := h.NotificationService.MarkRead(userID, notificationID)
	if err != nil {
		respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, notification)
}

// MarkAllNotificationsRead 全部通知标记已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := h.NotificationService.MarkAllRead(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"updated": updated})
}
