package repository

import (
	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingLinkRepository 追踪链接数据访问接口
type TrackingLinkRepository interface {
	WithTx(tx *gorm.DB) TrackingLinkRepository

	GetByToken(token string) (*models.TrackingLink, error)
	GetByID(id uint) (*models.TrackingLink, error)
	GetByPair(offerID, affiliateID uint) (*models.TrackingLink, error)
	UpsertByPair(link *models.TrackingLink) (*models.TrackingLink, error)
	ListByAffiliate(affiliateID uint) ([]models.TrackingLink, error)
	ListIDsByAffiliate(affiliateID uint) ([]uint, error)
	ListIDsByOffers(offerIDs []uint) ([]uint, error)
}

// GormTrackingLinkRepository GORM 实现
type GormTrackingLinkRepository struct {
	db *gorm.DB
}

// NewTrackingLinkRepository 创建追踪链接仓库
func NewTrackingLinkRepository(db *gorm.DB) *GormTrackingLinkRepository {
	return &GormTrackingLinkRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTrackingLinkRepository) WithTx(tx *gorm.DB) TrackingLinkRepository {
	if tx == nil {
		return r
	}
	return &GormTrackingLinkRepository{db: tx}
}

func (r *GormTrackingLinkRepository) first(query *gorm.DB) (*models.TrackingLink, error) {
	return findOne[models.TrackingLink](query.Scopes(withOffer))
}

// GetByToken 按令牌获取（含 Offer）
func (r *GormTrackingLinkRepository) GetByToken(token string) (*models.TrackingLink, error) {
	if token == "" {
		return nil, nil
	}
	return r.first(r.db.Where("token = ?", token))
}

// GetByID 按 ID 获取（含 Offer）
func (r *GormTrackingLinkRepository) GetByID(id uint) (*models.TrackingLink, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByPair 按 (offer, affiliate) 获取
func (r *GormTrackingLinkRepository) GetByPair(offerID, affiliateID uint) (*models.TrackingLink, error) {
	return r.first(r.db.Where("offer_id = ? AND affiliate_id = ?", offerID, affiliateID))
}

// UpsertByPair 幂等创建：已存在时保留原令牌，返回库中记录
func (r *GormTrackingLinkRepository) UpsertByPair(link *models.TrackingLink) (*models.TrackingLink, error) {
	if link == nil {
		return nil, nil
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "offer_id"}, {Name: "affiliate_id"}},
		DoNothing: true,
	}).Create(link).Error; err != nil {
		return nil, err
	}
	return r.GetByPair(link.OfferID, link.AffiliateID)
}

// ListByAffiliate 推广者的全部链接
func (r *GormTrackingLinkRepository) ListByAffiliate(affiliateID uint) ([]models.TrackingLink, error) {
	return findAll[models.TrackingLink](r.db.Where("affiliate_id = ?", affiliateID).Order("id ASC"))
}

// ListIDsByAffiliate 推广者的链接 ID
func (r *GormTrackingLinkRepository) ListIDsByAffiliate(affiliateID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.TrackingLink{}).Where("affiliate_id = ?", affiliateID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListIDsByOffers 多个 Offer 下的链接 ID
func (r *GormTrackingLinkRepository) ListIDsByOffers(offerIDs []uint) ([]uint, error) {
	if len(offerIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.Model(&models.TrackingLink{}).Where("offer_id IN ?", offerIDs).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
