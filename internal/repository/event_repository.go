package repository

import (
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventRepository 事件数据访问接口
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	Transaction(fn func(tx *gorm.DB) error) error

	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	GetByIDForUpdate(id uint) (*models.Event, error)
	UpdateModeration(id uint, status string, amount *models.Money, moderatedAt time.Time) (int64, error)
	SumApprovedSalesByOffer(offerID uint) (ApprovedSalesAggregate, error)
	SumApprovedSalesByLinks(linkIDs []uint) (decimal.Decimal, error)
	ListConversions(query ConversionQuery) ([]ConversionRow, error)
	CountByType(linkIDs []uint, from, to *time.Time) (map[string]int64, error)
	List(filter EventListFilter) ([]models.Event, int64, error)
}

// ApprovedSalesAggregate Offer 已确认销售汇总
type ApprovedSalesAggregate struct {
	Total decimal.Decimal `gorm:"column:total"`
	Count int64           `gorm:"column:cnt"`
}

// ConversionQuery 转化事件查询条件
type ConversionQuery struct {
	LinkIDs []uint
	Status  string // 为空表示不过滤
	From    *time.Time
	To      *time.Time
	// IncludeClicks 同时返回点击（分析报表按天统计用）
	IncludeClicks bool
}

// ConversionRow 线索/销售事件及其 Offer 计费参数
type ConversionRow struct {
	EventID     uint
	EventType   string
	Amount      *models.Money
	Status      string
	CreatedAt   time.Time
	OfferID     uint
	PayoutModel string
	HoldDays    *int
}

// GormEventRepository GORM 实现
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓库
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormEventRepository) WithTx(tx *gorm.DB) EventRepository {
	if tx == nil {
		return r
	}
	return &GormEventRepository{db: tx}
}

// Transaction 执行事务
func (r *GormEventRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建事件
func (r *GormEventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// GetByID 按 ID 获取（含链接与 Offer）
func (r *GormEventRepository) GetByID(id uint) (*models.Event, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Event](r.db.Scopes(withLinkOffer), id)
}

// GetByIDForUpdate 加锁获取（含链接与 Offer）
func (r *GormEventRepository) GetByIDForUpdate(id uint) (*models.Event, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Event](forUpdate(r.db).Scopes(withLinkOffer), id)
}

// UpdateModeration 写入审核结果，仅对 pending 事件生效，返回受影响行数
func (r *GormEventRepository) UpdateModeration(id uint, status string, amount *models.Money, moderatedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":       status,
		"moderated_at": moderatedAt,
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	result := r.db.Model(&models.Event{}).
		Where("id = ? AND status = ?", id, constants.EventStatusPending).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumApprovedSalesByOffer 汇总 Offer 全部链接下已确认销售的金额与数量
func (r *GormEventRepository) SumApprovedSalesByOffer(offerID uint) (ApprovedSalesAggregate, error) {
	var row ApprovedSalesAggregate
	err := r.db.Model(&models.Event{}).
		Joins("JOIN tracking_links ON tracking_links.id = events.tracking_link_id").
		Where("tracking_links.offer_id = ? AND events.event_type = ? AND events.status = ?",
			offerID, constants.EventTypeSale, constants.EventStatusApproved).
		Select("COALESCE(SUM(events.amount), 0) AS total, COUNT(events.id) AS cnt").
		Scan(&row).Error
	if err != nil {
		return ApprovedSalesAggregate{}, err
	}
	row.Total = row.Total.Round(2)
	return row, nil
}

// SumApprovedSalesByLinks 汇总链接下已确认销售金额
func (r *GormEventRepository) SumApprovedSalesByLinks(linkIDs []uint) (decimal.Decimal, error) {
	if len(linkIDs) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Event{}).
		Where("tracking_link_id IN ? AND event_type = ? AND status = ?", linkIDs, constants.EventTypeSale, constants.EventStatusApproved).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// ListConversions 查询线索/销售事件并带出 Offer 的计费模型与冻结天数
func (r *GormEventRepository) ListConversions(q ConversionQuery) ([]ConversionRow, error) {
	if len(q.LinkIDs) == 0 {
		return []ConversionRow{}, nil
	}
	eventTypes := []string{constants.EventTypeLead, constants.EventTypeSale}
	if q.IncludeClicks {
		eventTypes = append(eventTypes, constants.EventTypeClick)
	}
	query := r.db.Model(&models.Event{}).
		Select("events.id AS event_id, events.event_type, events.amount, events.status, events.created_at, "+
			"tracking_links.offer_id, offers.payout_model, offers.hold_days").
		Joins("JOIN tracking_links ON tracking_links.id = events.tracking_link_id").
		Joins("JOIN offers ON offers.id = tracking_links.offer_id").
		Where("events.tracking_link_id IN ? AND events.event_type IN ?",
			q.LinkIDs, eventTypes)
	if q.Status != "" {
		query = query.Where("events.status = ?", q.Status)
	}
	if q.From != nil {
		query = query.Where("events.created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("events.created_at <= ?", *q.To)
	}
	var rows []ConversionRow
	if err := query.Order("events.created_at ASC, events.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByType 按事件类型计数
func (r *GormEventRepository) CountByType(linkIDs []uint, from, to *time.Time) (map[string]int64, error) {
	result := map[string]int64{}
	if len(linkIDs) == 0 {
		return result, nil
	}
	query := r.db.Model(&models.Event{}).Where("tracking_link_id IN ?", linkIDs)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	var rows []struct {
		EventType string
		Total     int64
	}
	if err := query.Select("event_type, COUNT(*) AS total").Group("event_type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.EventType] = row.Total
	}
	return result, nil
}

// List 事件列表
func (r *GormEventRepository) List(filter EventListFilter) ([]models.Event, int64, error) {
	query := r.db.Model(&models.Event{}).
		Joins("JOIN tracking_links ON tracking_links.id = events.tracking_link_id")
	if filter.SupplierID != 0 {
		query = query.Joins("JOIN offers ON offers.id = tracking_links.offer_id").
			Where("offers.supplier_id = ?", filter.SupplierID)
	}
	if filter.OfferID != 0 {
		query = query.Where("tracking_links.offer_id = ?", filter.OfferID)
	}
	if filter.AffiliateID != 0 {
		query = query.Where("tracking_links.affiliate_id = ?", filter.AffiliateID)
	}
	if filter.EventType != "" {
		query = query.Where("events.event_type = ?", filter.EventType)
	}
	if filter.Status != "" {
		query = query.Where("events.status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("events.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("events.created_at <= ?", *filter.CreatedTo)
	}
	return findPage[models.Event](query, filter.Page, filter.PageSize, "events.created_at DESC, events.id DESC", selectEvents, withLinkOffer)
}
