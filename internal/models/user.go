package models

import (
	"time"
)

// User 用户表（推广者 / 广告主 / 管理员共用）
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                           // 主键
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`            // 邮箱
	PasswordHash string     `gorm:"not null" json:"-"`                                              // 密码哈希（不返回给前端）
	Name         string     `gorm:"type:varchar(120);default:''" json:"name"`                       // 显示名称
	CompanyName  string     `gorm:"type:varchar(255);default:''" json:"company_name,omitempty"`     // 公司名称（广告主）
	Phone        string     `gorm:"type:varchar(32);default:''" json:"phone,omitempty"`             // 联系电话
	Country      string     `gorm:"type:varchar(64);default:''" json:"country,omitempty"`           // 国家
	City         string     `gorm:"type:varchar(64);default:''" json:"city,omitempty"`              // 城市
	Role         string     `gorm:"type:varchar(20);not null;index" json:"role"`                    // 角色 affiliate/supplier/admin
	Status       string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"` // 账号状态
	Locale       string     `gorm:"type:varchar(16);default:'ru-RU'" json:"locale"`                 // 语言偏好
	TokenVersion uint64     `gorm:"not null;default:0" json:"-"`                                    // Token 版本（用于全量失效）
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`                                        // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
