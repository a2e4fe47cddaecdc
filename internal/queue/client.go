package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/logger"

	"github.com/hibiken/asynq"
)

// DefaultQueue 默认队列名称
const DefaultQueue = constants.QueueDefault

const (
	notificationEmailMaxRetry = 5
	notificationEmailTimeout  = 30 * time.Second
	notificationEmailRetain   = 24 * time.Hour
)

// Client 队列客户端，未启用时所有投递都是空操作
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: DefaultQueue}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.inner = asynq.NewClient(redisConnOpt(cfg))
	return c, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueNotificationEmail 投递通知邮件任务
// 同一通知只会入队一次，重复投递视为成功
func (c *Client) EnqueueNotificationEmail(ctx context.Context, payload NotificationEmailPayload) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.inner.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(fmt.Sprintf("%s:%d", TaskNotificationEmail, payload.NotificationID)),
		asynq.MaxRetry(notificationEmailMaxRetry),
		asynq.Timeout(notificationEmailTimeout),
		asynq.Retention(notificationEmailRetain),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig 生成 worker 端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return redisConnOpt(cfg), asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: 10 * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warnw("queue_task_failed", "task_type", task.Type(), "retried", retried, "error", err)
		}),
	}
}

func redisConnOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := "127.0.0.1", 6379
	var opt asynq.RedisClientOpt
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}
