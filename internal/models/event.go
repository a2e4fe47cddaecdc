package models

import "time"

// Event 归因事件（点击 / 线索 / 销售）
type Event struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                            // 主键
	TrackingLinkID uint       `gorm:"not null;index" json:"tracking_link_id"`                          // 追踪链接ID
	EventType      string     `gorm:"type:varchar(16);not null;index" json:"event_type"`               // 事件类型
	Amount         *Money     `gorm:"type:decimal(20,2)" json:"amount"`                                // 金额（点击为空）
	Currency       string     `gorm:"type:varchar(8);not null;default:'RUB'" json:"currency"`          // 币种
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"` // 状态
	ExternalID     string     `gorm:"type:varchar(255);index" json:"external_id,omitempty"`            // 外部关联ID（不做唯一约束）
	ModeratedAt    *time.Time `json:"moderated_at,omitempty"`                                          // 审核时间
	CreatedAt      time.Time  `gorm:"index;not null" json:"created_at"`                                // 创建时间（冻结期起点，不可修改）

	TrackingLink *TrackingLink `gorm:"foreignKey:TrackingLinkID" json:"tracking_link,omitempty"` // 追踪链接
}

// TableName 指定表名
func (Event) TableName() string {
	return "events"
}
