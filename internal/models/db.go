package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/config"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// OpenDialector 按驱动名构造 gorm 方言
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %q", driver)
}

// Open 打开连接并应用连接池参数
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := OpenDialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(200 * time.Millisecond)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool := cfg.Pool
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	return db, nil
}

// InitDB 打开连接并设为全局 DB
func InitDB(cfg config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AllModels 需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Offer{},
		&AffiliateOfferParticipation{},
		&TrackingLink{},
		&Event{},
		&Payout{},
		&Notification{},
		&AffiliateProfile{},
		&SupplierProfile{},
	}
}

// AutoMigrate 迁移全局 DB
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.AutoMigrate(AllModels()...)
}
