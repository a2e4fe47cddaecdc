package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 可独立启停的长驻组件；Start 阻塞到 Stop 被调用或 ctx 结束
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 组内任一服务退出都会触发整体停止
type Runner struct {
	services    []Service
	stopTimeout time.Duration
	log         *zap.SugaredLogger
}

func NewRunner(services ...Service) *Runner {
	return &Runner{services: services, stopTimeout: defaultStopTimeout}
}

// WithStopTimeout 停止阶段的总时限
func (r *Runner) WithStopTimeout(d time.Duration) *Runner {
	if d > 0 {
		r.stopTimeout = d
	}
	return r
}

// WithLogger nil 时静默
func (r *Runner) WithLogger(log *zap.SugaredLogger) *Runner {
	r.log = log
	return r
}

// Run ctx 取消视为正常退出；服务自行退出时返回它的错误
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	for i, svc := range r.services {
		if svc == nil {
			return fmt.Errorf("service #%d is nil", i)
		}
	}
	log := r.log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		group.Go(func() error {
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(groupCtx)
			if err == nil && groupCtx.Err() == nil {
				err = fmt.Errorf("service %s exited unexpectedly", svc.Name())
			}
			if err != nil {
				log.Infow("service_exit", "service", svc.Name(), "error", err)
			}
			return err
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		r.stopAll(log)
		return nil
	})
	return group.Wait()
}

// stopAll 按注册的逆序停止
func (r *Runner) stopAll(log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		started := time.Now()
		if err := svc.Stop(ctx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			continue
		}
		log.Infow("service_stopped", "service", svc.Name(), "elapsed_ms", time.Since(started).Milliseconds())
	}
}
