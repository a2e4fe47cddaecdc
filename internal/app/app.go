package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/provider"
	"github.com/realcpa-hub/internal/router"
	"github.com/realcpa-hub/internal/telemetry"
	"github.com/realcpa-hub/internal/worker"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultStopTimeout = 10 * time.Second

func IsValidMode(mode string) bool {
	return mode == ModeAll || mode == ModeAPI || mode == ModeWorker
}

// Options 进程级启动参数
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultStopTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}

// BuildRunner 按模式组装 HTTP 与 worker；all 模式下队列不可用时只跑 HTTP
func BuildRunner(cfg *config.Config, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if !IsValidMode(mode) {
		return nil, nil, fmt.Errorf("unknown mode: %s", mode)
	}

	container := provider.NewContainer(cfg)
	var services []Service
	if mode != ModeWorker {
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		services = append(services, NewHTTPService(addr, router.SetupRouter(cfg, container)))
	}
	if mode != ModeAPI {
		svc, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err == nil {
			services = append(services, svc)
		} else if mode == ModeWorker {
			container.Close()
			return nil, nil, err
		} else {
			logger.Warnw("app_worker_disabled", "error", err)
		}
	}
	return NewRunner(services...), container, nil
}

// Run 启动并阻塞到收到信号或某个服务退出
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), opts.Config.Telemetry)
	if err != nil {
		opts.Logger.Warnw("app_telemetry_setup_failed", "error", err)
	}
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				opts.Logger.Warnw("app_telemetry_shutdown_failed", "error", err)
			}
		}()
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	opts.Logger.Infow("app_start", "mode", opts.Mode, "host", opts.Config.Server.Host, "port", opts.Config.Server.Port)
	return runner.WithStopTimeout(opts.ShutdownTimeout).WithLogger(opts.Logger).Run(ctx)
}
