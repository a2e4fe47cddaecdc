package models

import "time"

// Payout 推广者提现结算单
type Payout struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                            // 主键
	AffiliateID uint       `gorm:"not null;index" json:"affiliate_id"`                              // 推广者用户ID
	PeriodStart time.Time  `gorm:"not null" json:"period_start"`                                    // 结算周期开始
	PeriodEnd   time.Time  `gorm:"not null" json:"period_end"`                                      // 结算周期结束
	Amount      Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                       // 金额（创建后不再重算）
	Currency    string     `gorm:"type:varchar(8);not null;default:'RUB'" json:"currency"`          // 币种
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"` // 状态
	PaidAt      *time.Time `json:"paid_at,omitempty"`                                               // 打款时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                                      // 更新时间

	Affiliate *User `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广者
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}
