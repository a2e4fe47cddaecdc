package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/provider"
	"github.com/realcpa-hub/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 把队列任务分派给容器里的服务
type Consumer struct {
	*provider.Container
}

func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register 在 mux 上挂载全部任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		return
	}
	for taskType, handler := range c.handlers() {
		mux.HandleFunc(taskType, handler)
	}
}

func (c *Consumer) handlers() map[string]func(context.Context, *asynq.Task) error {
	return map[string]func(context.Context, *asynq.Task) error{
		queue.TaskNotificationEmail: c.handleNotificationEmail,
	}
}

// decodePayload 载荷损坏时重试无意义，直接跳过重试
func decodePayload[T any](task *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w: %w", task.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}

func (c *Consumer) handleNotificationEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload[queue.NotificationEmailPayload](task)
	if err != nil {
		logger.Warnw("worker_payload_invalid", "task_type", task.Type(), "error", err)
		return err
	}
	log := logger.SW("task_type", task.Type(), "notification_id", payload.NotificationID, "user_id", payload.UserID)
	switch {
	case payload.NotificationID == 0 || payload.UserID == 0:
		log.Debugw("worker_task_dropped", "reason", "incomplete_payload")
		return nil
	case c.Container == nil || c.NotificationService == nil:
		log.Warnw("worker_task_dropped", "reason", "notification_service_missing")
		return nil
	}
	if err := c.NotificationService.SendEmail(ctx, payload); err != nil {
		log.Warnw("worker_notification_email_failed", "error", err)
		return err
	}
	return nil
}
