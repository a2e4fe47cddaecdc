package repository

import (
	"strings"
	"time"

	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	Create(user *models.User) error
	UpdateLastLogin(id uint, at time.Time) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByEmail 邮箱不区分大小写
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return findOne[models.User](r.db.Where("email = ?", email))
}

func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return findByID[models.User](r.db, id)
}

// GetByIDForUpdate 锁住推广者行，同一推广者的提现请求串行执行
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	return findByID[models.User](forUpdate(r.db), id)
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// Update 保存整行
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List 管理端用户列表，keyword 匹配邮箱、姓名、公司名
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Scopes(keywordMatch(filter.Keyword, "email", "name", "company_name"))
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return findPage[models.User](query, filter.Page, filter.PageSize, "id DESC")
}
