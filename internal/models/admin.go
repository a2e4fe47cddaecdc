package models

import (
	"errors"
	"strings"

	"github.com/realcpa-hub/internal/constants"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrAdminPasswordRequired 创建管理员时必须给出密码
var ErrAdminPasswordRequired = errors.New("admin password is required")

// EnsureAdmin 库中没有任何管理员时创建一个，返回是否新建
func EnsureAdmin(db *gorm.DB, email, password string) (bool, error) {
	if db == nil {
		return false, errors.New("database not initialized")
	}
	var existing int64
	if err := db.Model(&User{}).Where("role = ?", constants.RoleAdmin).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, ErrAdminPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         constants.RoleAdmin,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
