package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/constants"
)

// ErrInvalidFilter 过滤条件非法
var ErrInvalidFilter = errors.New("invalid filter")

// MaxListPageSize 管理端列表单页上限
const MaxListPageSize = 200

func invalidFilter(field, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidFilter, field, value)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func normalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > MaxListPageSize {
		pageSize = MaxListPageSize
	}
	return page, pageSize
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return fmt.Errorf("%w: created_from after created_to", ErrInvalidFilter)
	}
	return nil
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Status   string
	Keyword  string
}

// Validate 校验并归一化
func (f *UserListFilter) Validate() error {
	f.Role = strings.TrimSpace(f.Role)
	f.Status = strings.TrimSpace(f.Status)
	f.Keyword = strings.TrimSpace(f.Keyword)
	if f.Role != "" && !containsString([]string{constants.RoleAffiliate, constants.RoleSupplier, constants.RoleAdmin}, f.Role) {
		return invalidFilter("role", f.Role)
	}
	if f.Status != "" && !containsString([]string{constants.UserStatusActive, constants.UserStatusBlocked}, f.Status) {
		return invalidFilter("status", f.Status)
	}
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, MaxListPageSize)
	return nil
}

// OfferListFilter 查询 Offer 列表的过滤条件
type OfferListFilter struct {
	Page        int
	PageSize    int
	Statuses    []string
	Search      string
	PayoutModel string
	SupplierID  uint
}

// Validate 校验并归一化
func (f *OfferListFilter) Validate() error {
	allowed := []string{constants.OfferStatusDraft, constants.OfferStatusActive, constants.OfferStatusPaused, constants.OfferStatusClosed}
	for i, status := range f.Statuses {
		status = strings.TrimSpace(status)
		if !containsString(allowed, status) {
			return invalidFilter("status", status)
		}
		f.Statuses[i] = status
	}
	f.PayoutModel = strings.TrimSpace(f.PayoutModel)
	if f.PayoutModel != "" && !containsString([]string{constants.PayoutModelCPA, constants.PayoutModelCPL, constants.PayoutModelRevShare}, f.PayoutModel) {
		return invalidFilter("payout_model", f.PayoutModel)
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, 20)
	return nil
}

// EventListFilter 查询事件列表的过滤条件
type EventListFilter struct {
	Page        int
	PageSize    int
	SupplierID  uint // 非 0 时仅返回该广告主名下 Offer 的事件
	OfferID     uint
	AffiliateID uint
	EventType   string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Validate 校验并归一化
func (f *EventListFilter) Validate() error {
	f.EventType = strings.TrimSpace(f.EventType)
	f.Status = strings.TrimSpace(f.Status)
	if f.EventType != "" && !containsString([]string{constants.EventTypeClick, constants.EventTypeLead, constants.EventTypeSale}, f.EventType) {
		return invalidFilter("event_type", f.EventType)
	}
	if f.Status != "" && !containsString([]string{constants.EventStatusPending, constants.EventStatusApproved, constants.EventStatusRejected}, f.Status) {
		return invalidFilter("status", f.Status)
	}
	if err := validateRange(f.CreatedFrom, f.CreatedTo); err != nil {
		return err
	}
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, 50)
	return nil
}

// PayoutListFilter 查询结算单列表的过滤条件
type PayoutListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	Status      string
}

// Validate 校验并归一化
func (f *PayoutListFilter) Validate() error {
	f.Status = strings.TrimSpace(f.Status)
	if f.Status != "" && !containsString([]string{
		constants.PayoutStatusPending,
		constants.PayoutStatusProcessing,
		constants.PayoutStatusPaid,
		constants.PayoutStatusCanceled,
	}, f.Status) {
		return invalidFilter("status", f.Status)
	}
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, 50)
	return nil
}

// NotificationListFilter 查询站内通知的过滤条件
type NotificationListFilter struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Normalize 归一化分页参数（limit 最大 50）
func (f *NotificationListFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 50 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
