package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/i18n"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/queue"
	"github.com/realcpa-hub/internal/repository"

	"github.com/hibiken/asynq"
)

const notificationEmailDedupeTTL = 10 * time.Minute

// NotifyInput 站内通知参数；标题与正文按接收人语言渲染
type NotifyInput struct {
	UserID   uint
	Type     string
	TitleKey string
	BodyKey  string
	BodyArgs []interface{}
	Link     string
}

// NotificationListResult 通知列表
type NotificationListResult struct {
	Items       []models.Notification `json:"items"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unreadCount"`
}

// NotificationService 站内通知与邮件投递
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	queueClient      *queue.Client
	emailService     *EmailService
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	queueClient *queue.Client,
	emailService *EmailService,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		queueClient:      queueClient,
		emailService:     emailService,
	}
}

// Notify 写入站内通知并入队邮件任务
// 失败只记录日志，不影响调用方业务
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) *models.Notification {
	if s == nil || input.UserID == 0 {
		return nil
	}
	locale := i18n.DefaultLocale
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		logger.Warnw("notification_user_load_failed", "user_id", input.UserID, "error", err)
	}
	if user != nil && strings.TrimSpace(user.Locale) != "" {
		locale = i18n.NormalizeLocale(user.Locale)
	}

	notification := &models.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     i18n.T(locale, input.TitleKey),
		Body:      i18n.Sprintf(locale, input.BodyKey, input.BodyArgs...),
		Link:      input.Link,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Warnw("notification_create_failed", "user_id", input.UserID, "type", input.Type, "error", err)
		return nil
	}

	if err := s.enqueueEmail(ctx, notification, locale); err != nil {
		logger.Warnw("notification_email_enqueue_failed",
			"notification_id", notification.ID,
			"user_id", input.UserID,
			"error", err,
		)
	}
	return notification
}

func (s *NotificationService) enqueueEmail(ctx context.Context, notification *models.Notification, locale string) error {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return nil
	}
	acquired, err := cache.SetNX(ctx, buildNotificationDedupeKey(notification), "1", notificationEmailDedupeTTL)
	if err != nil {
		return err
	}
	if !acquired {
		logger.Debugw("notification_email_deduplicated", "notification_id", notification.ID)
		return nil
	}
	return s.queueClient.EnqueueNotificationEmail(ctx, queue.NotificationEmailPayload{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Locale:         locale,
	})
}

// SendEmail 处理通知邮件任务
func (s *NotificationService) SendEmail(ctx context.Context, payload queue.NotificationEmailPayload) error {
	if s == nil || s.emailService == nil {
		return nil
	}
	notification, err := s.notificationRepo.GetByID(payload.NotificationID)
	if err != nil {
		return err
	}
	if notification == nil || notification.UserID != payload.UserID {
		logger.Warnw("notification_email_target_missing", "notification_id", payload.NotificationID)
		return nil
	}
	user, err := s.userRepo.GetByID(notification.UserID)
	if err != nil {
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil
	}
	err = s.emailService.SendNotificationEmail(NotificationEmail{
		To:      user.Email,
		Subject: notification.Title,
		Body:    notification.Body,
		Link:    notification.Link,
	})
	if errors.Is(err, ErrEmailServiceDisabled) || errors.Is(err, ErrEmailServiceNotConfigured) {
		logger.Debugw("notification_email_skipped", "notification_id", notification.ID, "reason", err.Error())
		return nil
	}
	if errors.Is(err, ErrEmailRecipientRejected) {
		logger.Warnw("notification_email_recipient_rejected", "notification_id", notification.ID, "email", user.Email)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

// List 通知列表
func (s *NotificationService) List(userID uint, unreadOnly bool, limit, offset int) (*NotificationListResult, error) {
	filter := repository.NotificationListFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	}
	items, total, err := s.notificationRepo.List(filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Items: items, Total: total, UnreadCount: unread}, nil
}

// MarkRead 标记单条已读，已读的保持原时间
func (s *NotificationService) MarkRead(userID, notificationID uint) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(notificationID)
	if err != nil {
		return nil, err
	}
	if notification == nil || notification.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	if notification.ReadAt != nil {
		return notification, nil
	}
	now := time.Now()
	if _, err := s.notificationRepo.SetReadAt(userID, notificationID, &now); err != nil {
		return nil, err
	}
	notification.ReadAt = &now
	return notification, nil
}

// MarkAllRead 全部标记已读，返回更新条数
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(userID, time.Now())
}

func buildNotificationDedupeKey(notification *models.Notification) string {
	signature := fmt.Sprintf("%d|%s|%s|%s", notification.UserID, notification.Type, notification.Title, notification.Body)
	hash := sha1.Sum([]byte(signature))
	return "notification:dedupe:" + hex.EncodeToString(hash[:])
}
