package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/provider"
	"github.com/realcpa-hub/internal/queue"
	"github.com/realcpa-hub/internal/repository"
	"github.com/realcpa-hub/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:worker_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	emailSvc := service.NewEmailService(&config.EmailConfig{Enabled: false})
	container := &provider.Container{
		UserRepo:            userRepo,
		NotificationRepo:    notificationRepo,
		EmailService:        emailSvc,
		NotificationService: service.NewNotificationService(notificationRepo, userRepo, nil, emailSvc),
	}
	return NewConsumer(container), db
}

func notificationTask(t *testing.T, payload queue.NotificationEmailPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewNotificationEmailTask(payload)
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	return task
}

func TestRegisterNotificationEmailHandler(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	_, pattern := mux.Handler(asynq.NewTask(queue.TaskNotificationEmail, nil))
	if pattern != queue.TaskNotificationEmail {
		t.Fatalf("want handler for %s got %q", queue.TaskNotificationEmail, pattern)
	}
}

func TestHandleNotificationEmailBadPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	err := consumer.handleNotificationEmail(context.Background(), asynq.NewTask(queue.TaskNotificationEmail, []byte("{bad")))
	if err == nil {
		t.Fatalf("malformed payload must fail")
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("want json syntax error got %T", err)
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload must not be retried: %v", err)
	}
}

func TestHandleNotificationEmailSkipsIncompletePayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	task := notificationTask(t, queue.NotificationEmailPayload{NotificationID: 1})
	if err := consumer.handleNotificationEmail(context.Background(), task); err != nil {
		t.Fatalf("incomplete payload must be skipped: %v", err)
	}
}

func TestHandleNotificationEmailWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := notificationTask(t, queue.NotificationEmailPayload{NotificationID: 1, UserID: 1})
	if err := consumer.handleNotificationEmail(context.Background(), task); err != nil {
		t.Fatalf("missing service must be skipped: %v", err)
	}
}

func TestHandleNotificationEmailDisabledEmail(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	user := models.User{Email: "aff@example.com", PasswordHash: "x", Role: constants.RoleAffiliate, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	notification := models.Notification{UserID: user.ID, Type: "payout_paid", Title: "Payout paid", CreatedAt: time.Now()}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("create notification failed: %v", err)
	}

	task := notificationTask(t, queue.NotificationEmailPayload{NotificationID: notification.ID, UserID: user.ID})
	if err := consumer.handleNotificationEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled email must not be retried: %v", err)
	}

	// 载荷里的用户与通知不匹配时丢弃
	mismatch := notificationTask(t, queue.NotificationEmailPayload{NotificationID: notification.ID, UserID: user.ID + 1})
	if err := consumer.handleNotificationEmail(context.Background(), mismatch); err != nil {
		t.Fatalf("mismatched payload must be dropped: %v", err)
	}
}

func TestNewServiceRequiresQueue(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	if _, err := NewService(&config.QueueConfig{Enabled: false}, consumer); err == nil {
		t.Fatalf("disabled queue must fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer must fail")
	}
}
