package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog_gateway/internal/model"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// :memory: 每个连接是独立的库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Product{},
		&model.Job{}, &model.JobItem{},
		&model.ContentAudit{}, &model.SeoGeneration{},
		&model.Integration{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	if err := EnsureJobIndexes(db); err != nil {
		t.Fatalf("创建任务索引失败: %v", err)
	}

	return db
}
