package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
)

// ==================== 测试辅助函数 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取连接池失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Product{},
		&model.Job{},
		&model.JobItem{},
		&model.ContentAudit{},
		&model.SeoGeneration{},
		&model.Integration{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	if err := repository.EnsureJobIndexes(db); err != nil {
		t.Fatalf("创建任务索引失败: %v", err)
	}

	return db
}

func newTestProductService(t *testing.T) (*ProductService, *gorm.DB) {
	db := setupServiceTestDB(t)
	return NewProductService(repository.NewProductRepository(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, p *model.Product) *model.Product {
	t.Helper()
	if p.Status == "" {
		p.Status = model.ProductStatusActive
	}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		t.Fatalf("创建测试商品失败: %v", err)
	}
	return p
}

func ownedProduct(userID, title string) *model.Product {
	p := &model.Product{Title: title}
	p.UserID = userID
	return p
}
