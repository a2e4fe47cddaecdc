package queue

import (
	"encoding/json"

	"github.com/realcpa-hub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationEmail 站内通知邮件任务
	TaskNotificationEmail = constants.TaskNotificationEmail
)

// NotificationEmailPayload 通知邮件任务载荷
type NotificationEmailPayload struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Locale         string `json:"locale,omitempty"`
}

// NewNotificationEmailTask 创建通知邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, body), nil
}
