package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用字段，主键为 UUID 字符串
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 未指定主键时生成 UUID
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// OwnedModel 归属于某个用户的资源
// UserID 由服务层显式写入，审计回调在为空时兜底
type OwnedModel struct {
	BaseModel
	UserID string `gorm:"size:64;index;not null;comment:所属用户ID" json:"user_id"`
}
