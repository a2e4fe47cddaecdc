package models

import "time"

// Offer 广告主发布的推广任务
type Offer struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	SupplierID     uint      `gorm:"not null;index" json:"supplier_id"`                             // 广告主用户ID
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`                       // 标题
	Description    string    `gorm:"type:text" json:"description"`                                  // 描述
	LandingURL     string    `gorm:"type:varchar(1024);not null" json:"landing_url"`                // 落地页地址
	PayoutModel    string    `gorm:"type:varchar(16);not null;default:'CPA'" json:"payout_model"`   // 计费模型 CPA/CPL/RevShare
	PayoutAmount   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"payout_amount"`    // 单次转化佣金
	Currency       string    `gorm:"type:varchar(8);not null;default:'RUB'" json:"currency"`        // 币种
	HoldDays       *int      `json:"hold_days"`                                                     // 冻结天数（空视为 0）
	CapAmount      *Money    `gorm:"type:decimal(20,2)" json:"cap_amount"`                          // 预算上限（仅统计已确认销售）
	CapConversions *int      `json:"cap_conversions"`                                               // 转化数量上限
	Status         string    `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"` // 状态
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`                                       // 更新时间

	Supplier *User `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"` // 广告主
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}

// HoldDaysOrZero 冻结天数，未设置时为 0
func (o Offer) HoldDaysOrZero() int {
	if o.HoldDays == nil || *o.HoldDays < 0 {
		return 0
	}
	return *o.HoldDays
}

// HasCaps 是否配置了任一上限
func (o Offer) HasCaps() bool {
	return o.CapAmount != nil || o.CapConversions != nil
}
