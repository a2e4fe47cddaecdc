package repository

import (
	"time"

	"github.com/realcpa-hub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutRepository 结算单数据访问接口
type PayoutRepository interface {
	WithTx(tx *gorm.DB) PayoutRepository
	Transaction(fn func(tx *gorm.DB) error) error

	Create(payout *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetByIDForUpdate(id uint) (*models.Payout, error)
	UpdateStatus(id uint, status string, paidAt *time.Time, updatedAt time.Time) error
	ListByAffiliate(affiliateID uint) ([]models.Payout, error)
	SumByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error)
	List(filter PayoutListFilter) ([]models.Payout, int64, error)
}

// GormPayoutRepository GORM 实现
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建结算单仓库
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) PayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPayoutRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建结算单
func (r *GormPayoutRepository) Create(payout *models.Payout) error {
	return r.db.Create(payout).Error
}

// GetByID 按 ID 获取
func (r *GormPayoutRepository) GetByID(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Payout](r.db, id)
}

// GetByIDForUpdate 加锁获取
func (r *GormPayoutRepository) GetByIDForUpdate(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Payout](forUpdate(r.db), id)
}

// UpdateStatus 更新状态，paidAt 非空时同时写入打款时间
func (r *GormPayoutRepository) UpdateStatus(id uint, status string, paidAt *time.Time, updatedAt time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": updatedAt,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	return r.db.Model(&models.Payout{}).Where("id = ?", id).Updates(updates).Error
}

// ListByAffiliate 推广者结算单（新的在前）
func (r *GormPayoutRepository) ListByAffiliate(affiliateID uint) ([]models.Payout, error) {
	return findAll[models.Payout](r.db.Where("affiliate_id = ?", affiliateID).Order("created_at DESC, id DESC"))
}

// SumByAffiliate 汇总推广者指定状态的结算金额
func (r *GormPayoutRepository) SumByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error) {
	if affiliateID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Payout{}).
		Where("affiliate_id = ? AND status IN ?", affiliateID, statuses).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// List 结算单列表
func (r *GormPayoutRepository) List(filter PayoutListFilter) ([]models.Payout, int64, error) {
	query := r.db.Model(&models.Payout{})
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return findPage[models.Payout](query, filter.Page, filter.PageSize, "created_at DESC, id DESC", withAffiliate)
}
