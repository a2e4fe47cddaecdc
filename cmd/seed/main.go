package main

import (
	_ "embed"
	"flag"
	"os"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/service"
)

//go:embed fixtures/default.yml
var defaultFixture []byte

func main() {
	var file string
	flag.StringVar(&file, "file", "", "YAML 数据文件，留空使用内置演示数据")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	raw := defaultFixture
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			stdLog.Fatalf("Failed to read fixture %s: %v", file, err)
		}
		raw = content
	}
	fx, err := ParseFixture(raw)
	if err != nil {
		stdLog.Fatalf("%v", err)
	}

	summary, err := Apply(models.DB, fx, service.NewTokenGenerator(cfg.Tracking.TokenStrategy))
	if err != nil {
		stdLog.Fatalf("Failed to seed: %v", err)
	}
	logger.Infow("seed_completed",
		"users", summary.Users,
		"offers", summary.Offers,
		"participations", summary.Participations,
		"tracking_links", summary.Links,
	)
}
