package models

import (
	"time"
)

// AffiliateProfile 推广者档案（收款信息与通知偏好）
type AffiliateProfile struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                // 主键
	UserID              uint      `gorm:"not null;uniqueIndex" json:"user_id"` // 用户ID
	PayoutDetails       string    `gorm:"type:text" json:"payoutDetails"`      // 收款方式（JSON 文本）
	TrafficSources      string    `gorm:"type:text" json:"trafficSources"`     // 流量来源
	Notes               string    `gorm:"type:text" json:"notes"`              // 备注
	NotifyNews          *bool     `json:"notifyNews"`                          // 新闻通知
	NotifySystem        *bool     `json:"notifySystem"`                        // 系统通知
	NotifyParticipation *bool     `json:"notifyParticipation"`                 // 接入审核通知
	NotifyPayouts       *bool     `json:"notifyPayouts"`                       // 结算通知
	CreatedAt           time.Time `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt           time.Time `gorm:"index" json:"updated_at"`             // 更新时间
}

// TableName 指定表名
func (AffiliateProfile) TableName() string {
	return "affiliate_profiles"
}

// SupplierProfile 广告主档案（法人与结算条款）
type SupplierProfile struct {
	ID          uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID      uint      `gorm:"not null;uniqueIndex" json:"user_id"`           // 用户ID
	LegalEntity string    `gorm:"type:varchar(255);not null" json:"legalEntity"` // 法人名称
	INN         string    `gorm:"type:varchar(32);default:''" json:"inn"`        // 纳税人识别号
	KPP         string    `gorm:"type:varchar(32);default:''" json:"kpp"`        // 税务登记代码
	VatID       string    `gorm:"type:varchar(64);default:''" json:"vatId"`      // 增值税号
	Website     string    `gorm:"type:varchar(255);default:''" json:"website"`   // 官网
	PayoutTerms string    `gorm:"type:text" json:"payoutTerms"`                  // 结算条款
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                       // 更新时间
}

// TableName 指定表名
func (SupplierProfile) TableName() string {
	return "supplier_profiles"
}
