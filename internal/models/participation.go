package models

import "time"

// AffiliateOfferParticipation 推广者加入 Offer 的申请
type AffiliateOfferParticipation struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	OfferID     uint       `gorm:"not null;index;uniqueIndex:idx_participation_pair" json:"offer_id"`     // Offer ID
	AffiliateID uint       `gorm:"not null;index;uniqueIndex:idx_participation_pair" json:"affiliate_id"` // 推广者用户ID
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`       // 状态
	DecidedAt   *time.Time `json:"decided_at,omitempty"`                                                  // 审核时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                                            // 更新时间

	Offer     *Offer `gorm:"foreignKey:OfferID" json:"offer,omitempty"`         // 关联 Offer
	Affiliate *User  `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广者
}

// TableName 指定表名
func (AffiliateOfferParticipation) TableName() string {
	return "affiliate_offer_participations"
}
