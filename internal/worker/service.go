package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 通知邮件等异步任务的消费端，生命周期由 app.Runner 管理
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 队列未启用时返回错误，由调用方决定是否跳过
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	switch {
	case cfg == nil || !cfg.Enabled:
		return nil, errors.New("queue disabled")
	case consumer == nil:
		return nil, errors.New("worker consumer is nil")
	}
	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(redisOpt, serverCfg), mux: mux}, nil
}

func (s *Service) Name() string { return "worker" }

// Start 启动消费协程后阻塞到 ctx 结束；信号由 Runner 统一处理，不使用 asynq 自带的 Run
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束，超出 ctx 期限时直接返回
func (s *Service) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.Shutdown()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
