package repository

import (
	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository 推广者与广告主档案
type ProfileRepository interface {
	GetAffiliateProfile(userID uint) (*models.AffiliateProfile, error)
	SaveAffiliateProfile(profile *models.AffiliateProfile) error
	GetSupplierProfile(userID uint) (*models.SupplierProfile, error)
	SaveSupplierProfile(profile *models.SupplierProfile) error
}

// GormProfileRepository GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建档案仓库
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) GetAffiliateProfile(userID uint) (*models.AffiliateProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.AffiliateProfile](r.db.Where("user_id = ?", userID))
}

// SaveAffiliateProfile ID 为 0 时新建
func (r *GormProfileRepository) SaveAffiliateProfile(profile *models.AffiliateProfile) error {
	return r.db.Save(profile).Error
}

func (r *GormProfileRepository) GetSupplierProfile(userID uint) (*models.SupplierProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.SupplierProfile](r.db.Where("user_id = ?", userID))
}

// SaveSupplierProfile ID 为 0 时新建
func (r *GormProfileRepository) SaveSupplierProfile(profile *models.SupplierProfile) error {
	return r.db.Save(profile).Error
}
