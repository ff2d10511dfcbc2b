package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog_gateway/pkg/logging"
)

// Options 连接池与迁移参数
type Options struct {
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	ConnMaxLife  time.Duration
	AutoMigrate  bool
	LogLevel     logger.LogLevel
}

// InitDB 初始化数据库连接
// models: 需要自动建表/迁移的结构体指针
func InitDB(opts Options, models ...interface{}) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if err := Configure(db, opts, models...); err != nil {
		return nil, err
	}

	logging.Info().Msg("数据库连接成功")
	return db, nil
}

// Configure 设置连接池并执行迁移，测试中的 sqlite 连接也走这里
func Configure(db *gorm.DB, opts Options, models ...interface{}) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLife)
	}

	if opts.AutoMigrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("自动建表出错: %w", err)
		}
	}
	return nil
}
