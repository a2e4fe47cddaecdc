package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/realcpa-hub/internal/app"
	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"

	"github.com/gin-gonic/gin"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all, api, worker")
	flag.Parse()

	if err := run(*mode); err != nil {
		logger.Errorw("server_exit", "error", err)
		logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(mode string) error {
	if !app.IsValidMode(mode) {
		return fmt.Errorf("未知启动模式: %s", mode)
	}
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())

	if cfg.JWT.WeakSecret() {
		if cfg.IsRelease() {
			return errors.New("jwt.secret 过弱或仍为默认值")
		}
		logger.Warnw("jwt_secret_weak", "mode", cfg.Server.Mode)
	}
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := models.InitDB(cfg.Database); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	bootstrapAdmin(cfg)

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// bootstrapAdmin 失败只告警，不阻塞启动
func bootstrapAdmin(cfg *config.Config) {
	created, err := models.EnsureAdmin(models.DB, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
	switch {
	case errors.Is(err, models.ErrAdminPasswordRequired):
		logger.Warnw("bootstrap_admin_skipped", "reason", "bootstrap.admin_password is empty")
	case err != nil:
		logger.Warnw("bootstrap_admin_failed", "error", err)
	case created:
		logger.Infow("bootstrap_admin_created", "email", cfg.Bootstrap.AdminEmail)
	}
}
