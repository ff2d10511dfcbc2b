package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testWidget struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func TestConfigure_AutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = Configure(db, Options{MaxIdleConns: 1, MaxOpenConns: 1, AutoMigrate: true}, &testWidget{})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if !db.Migrator().HasTable(&testWidget{}) {
		t.Error("表应该已创建")
	}
}

func TestConfigure_SkipMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := Configure(db, Options{AutoMigrate: false}, &testWidget{}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if db.Migrator().HasTable(&testWidget{}) {
		t.Error("关闭迁移时不应建表")
	}
}
