package models

import "time"

// TrackingLink 推广者在某个 Offer 下的追踪链接
type TrackingLink struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	OfferID     uint      `gorm:"not null;index;uniqueIndex:idx_tracking_link_pair" json:"offer_id"`     // Offer ID
	AffiliateID uint      `gorm:"not null;index;uniqueIndex:idx_tracking_link_pair" json:"affiliate_id"` // 推广者用户ID
	Token       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`                    // 全局唯一令牌，签发后不可修改
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                               // 创建时间

	Offer *Offer `gorm:"foreignKey:OfferID" json:"offer,omitempty"` // 关联 Offer
}

// TableName 指定表名
func (TrackingLink) TableName() string {
	return "tracking_links"
}
