package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

// PageQuery 列表接口的 page / page_size
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (q *PageQuery) normalizePage() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > repository.MaxListPageSize {
		q.PageSize = repository.MaxListPageSize
	}
}

// Pagination 按归一化后的分页参数生成响应分页信息
func (q PageQuery) Pagination(total int64) response.Pagination {
	return response.BuildPagination(q.Page, q.PageSize, total)
}

// BindQuery 绑定查询参数；含 PageQuery 时顺带归一化。失败时已写入 400
func BindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		RespondError(c, response.CodeBadRequest, "error.filter_invalid", err)
		return false
	}
	if paged, ok := dest.(interface{ normalizePage() }); ok {
		paged.normalizePage()
	}
	return true
}

// CurrentUserID 鉴权中间件写入的用户 ID，缺失时写入 401
func CurrentUserID(c *gin.Context) (uint, bool) {
	if id := c.GetUint("user_id"); id != 0 {
		return id, true
	}
	RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
	return 0, false
}

// ParseIDParam 路径中的正整数 ID
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// ParseDate 接受 2006-01-02 或 RFC3339，空串返回 nil
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	layout := time.RFC3339
	if len(raw) == len(time.DateOnly) {
		layout = time.DateOnly
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EventListQuery 事件列表查询参数（广告主与管理端共用）
type EventListQuery struct {
	PageQuery
	OfferID     uint   `form:"offer_id"`
	AffiliateID uint   `form:"affiliate_id"`
	EventType   string `form:"event_type"`
	Status      string `form:"status"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

// BindEventListQuery 绑定并转换为仓库过滤条件，失败时已写入 400
func BindEventListQuery(c *gin.Context) (EventListQuery, repository.EventListFilter, bool) {
	var q EventListQuery
	if !BindQuery(c, &q) {
		return q, repository.EventListFilter{}, false
	}
	filter := repository.EventListFilter{
		Page:        q.Page,
		PageSize:    q.PageSize,
		OfferID:     q.OfferID,
		AffiliateID: q.AffiliateID,
		EventType:   strings.TrimSpace(q.EventType),
		Status:      strings.TrimSpace(q.Status),
	}
	var err error
	if filter.CreatedFrom, err = ParseDate(q.CreatedFrom); err == nil {
		filter.CreatedTo, err = ParseDate(q.CreatedTo)
	}
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.filter_invalid", err)
		return q, filter, false
	}
	return q, filter, true
}

// OfferListQuery Offer 列表查询参数，status 支持逗号分隔多个
type OfferListQuery struct {
	PageQuery
	Search      string `form:"search"`
	PayoutModel string `form:"payout_model"`
	SupplierID  uint   `form:"supplier_id"`
	Status      string `form:"status"`
}

// Filter 转换为仓库过滤条件
func (q OfferListQuery) Filter() repository.OfferListFilter {
	filter := repository.OfferListFilter{
		Page:        q.Page,
		PageSize:    q.PageSize,
		Search:      strings.TrimSpace(q.Search),
		PayoutModel: strings.TrimSpace(q.PayoutModel),
		SupplierID:  q.SupplierID,
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		filter.Statuses = strings.Split(status, ",")
	}
	return filter
}
