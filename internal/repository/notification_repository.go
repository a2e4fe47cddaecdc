package repository

import (
	"time"

	"github.com/realcpa-hub/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 站内通知数据访问接口
type NotificationRepository interface {
	Create(n *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	List(filter NotificationListFilter) ([]models.Notification, int64, error)
	CountUnread(userID uint) (int64, error)
	SetReadAt(userID, id uint, readAt *time.Time) (int64, error)
	MarkAllRead(userID uint, readAt time.Time) (int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create 创建通知
func (r *GormNotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// GetByID 按 ID 获取
func (r *GormNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Notification](r.db, id)
}

// List 通知列表（新的在前）
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notification, int64, error) {
	filter.Normalize()
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows, err := findAll[models.Notification](query.Order("created_at DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset))
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountUnread 未读数量
func (r *GormNotificationRepository) CountUnread(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&total).Error
	return total, err
}

// SetReadAt 设置单条已读状态（nil 表示标记未读）
func (r *GormNotificationRepository) SetReadAt(userID, id uint, readAt *time.Time) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", readAt)
	return result.RowsAffected, result.Error
}

// MarkAllRead 全部标记已读
func (r *GormNotificationRepository) MarkAllRead(userID uint, readAt time.Time) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", readAt)
	return result.RowsAffected, result.Error
}
