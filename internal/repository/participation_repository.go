package repository

import (
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
)

// ParticipationRepository 参与申请数据访问接口
type ParticipationRepository interface {
	WithTx(tx *gorm.DB) ParticipationRepository
	Transaction(fn func(tx *gorm.DB) error) error

	GetByID(id uint) (*models.AffiliateOfferParticipation, error)
	GetByIDForUpdate(id uint) (*models.AffiliateOfferParticipation, error)
	GetByPair(offerID, affiliateID uint) (*models.AffiliateOfferParticipation, error)
	Create(p *models.AffiliateOfferParticipation) error
	UpdateDecision(id uint, status string, decidedAt time.Time) error
	ListByOffer(offerID uint) ([]models.AffiliateOfferParticipation, error)
	ListByAffiliate(affiliateID uint) ([]models.AffiliateOfferParticipation, error)
	ListPending(limit int) ([]models.AffiliateOfferParticipation, error)
	CountApprovedByAffiliate(affiliateID uint) (int64, error)
}

// GormParticipationRepository GORM 实现
type GormParticipationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository 创建参与申请仓库
func NewParticipationRepository(db *gorm.DB) *GormParticipationRepository {
	return &GormParticipationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormParticipationRepository) WithTx(tx *gorm.DB) ParticipationRepository {
	if tx == nil {
		return r
	}
	return &GormParticipationRepository{db: tx}
}

// Transaction 执行事务
func (r *GormParticipationRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按 ID 获取（含 Offer）
func (r *GormParticipationRepository) GetByID(id uint) (*models.AffiliateOfferParticipation, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.AffiliateOfferParticipation](r.db.Scopes(withOffer), id)
}

// GetByIDForUpdate 加锁获取
func (r *GormParticipationRepository) GetByIDForUpdate(id uint) (*models.AffiliateOfferParticipation, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.AffiliateOfferParticipation](forUpdate(r.db).Scopes(withOffer), id)
}

// GetByPair 按 (offer, affiliate) 获取
func (r *GormParticipationRepository) GetByPair(offerID, affiliateID uint) (*models.AffiliateOfferParticipation, error) {
	return findOne[models.AffiliateOfferParticipation](r.db.Where("offer_id = ? AND affiliate_id = ?", offerID, affiliateID))
}

// Create 创建申请
func (r *GormParticipationRepository) Create(p *models.AffiliateOfferParticipation) error {
	return r.db.Create(p).Error
}

// UpdateDecision 写入审核结果
func (r *GormParticipationRepository) UpdateDecision(id uint, status string, decidedAt time.Time) error {
	return r.db.Model(&models.AffiliateOfferParticipation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		}).Error
}

// ListByOffer Offer 下的全部申请（含推广者）
func (r *GormParticipationRepository) ListByOffer(offerID uint) ([]models.AffiliateOfferParticipation, error) {
	return findAll[models.AffiliateOfferParticipation](r.db.Scopes(withAffiliate).
		Where("offer_id = ?", offerID).
		Order("created_at DESC, id DESC"))
}

// ListByAffiliate 推广者的全部申请（含 Offer）
func (r *GormParticipationRepository) ListByAffiliate(affiliateID uint) ([]models.AffiliateOfferParticipation, error) {
	return findAll[models.AffiliateOfferParticipation](r.db.Scopes(withOffer).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC, id DESC"))
}

// ListPending 待审核申请
func (r *GormParticipationRepository) ListPending(limit int) ([]models.AffiliateOfferParticipation, error) {
	if limit <= 0 {
		limit = 100
	}
	return findAll[models.AffiliateOfferParticipation](r.db.Scopes(withOffer, withAffiliate).
		Where("status = ?", constants.ParticipationStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit))
}

// CountApprovedByAffiliate 推广者已接入的 Offer 数
func (r *GormParticipationRepository) CountApprovedByAffiliate(affiliateID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.AffiliateOfferParticipation{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, constants.ParticipationStatusApproved).
		Count(&total).Error
	return total, err
}
