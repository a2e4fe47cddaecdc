package repository

import (
	"time"

	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
)

// OfferRepository Offer 数据访问接口
type OfferRepository interface {
	WithTx(tx *gorm.DB) OfferRepository
	Transaction(fn func(tx *gorm.DB) error) error

	GetByID(id uint) (*models.Offer, error)
	GetByIDForUpdate(id uint) (*models.Offer, error)
	Create(offer *models.Offer) error
	Update(offer *models.Offer) error
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	List(filter OfferListFilter) ([]models.Offer, int64, error)
	ListBySupplier(supplierID uint) ([]models.Offer, error)
	ListIDsBySupplier(supplierID uint) ([]uint, error)
}

// GormOfferRepository GORM 实现
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository 创建 Offer 仓库
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOfferRepository) WithTx(tx *gorm.DB) OfferRepository {
	if tx == nil {
		return r
	}
	return &GormOfferRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOfferRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取 Offer
func (r *GormOfferRepository) GetByID(id uint) (*models.Offer, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Offer](r.db, id)
}

// GetByIDForUpdate 加锁获取 Offer，上限校验与写入在同一把行锁内完成
func (r *GormOfferRepository) GetByIDForUpdate(id uint) (*models.Offer, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Offer](forUpdate(r.db), id)
}

// Create 创建 Offer
func (r *GormOfferRepository) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

// Update 保存 Offer
func (r *GormOfferRepository) Update(offer *models.Offer) error {
	return r.db.Save(offer).Error
}

// UpdateStatus 更新 Offer 状态
func (r *GormOfferRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	return r.db.Model(&models.Offer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		}).Error
}

// List Offer 列表
func (r *GormOfferRepository) List(filter OfferListFilter) ([]models.Offer, int64, error) {
	query := r.db.Model(&models.Offer{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.PayoutModel != "" {
		query = query.Where("payout_model = ?", filter.PayoutModel)
	}
	if filter.SupplierID != 0 {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	query = query.Scopes(keywordMatch(filter.Search, "title", "description"))
	return findPage[models.Offer](query, filter.Page, filter.PageSize, "created_at DESC, id DESC")
}

// ListBySupplier 广告主的全部 Offer
func (r *GormOfferRepository) ListBySupplier(supplierID uint) ([]models.Offer, error) {
	return findAll[models.Offer](r.db.Where("supplier_id = ?", supplierID).Order("created_at DESC, id DESC"))
}

// ListIDsBySupplier 广告主的 Offer ID 列表
func (r *GormOfferRepository) ListIDsBySupplier(supplierID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Offer{}).Where("supplier_id = ?", supplierID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
