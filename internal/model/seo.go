package model

import (
	"time"

	"gorm.io/datatypes"
)

// 审计对象类型
const (
	AuditTargetProduct = "product"
	AuditTargetCatalog = "catalog"
)

// SEO 评分状态
const (
	SeoStatusOptimized = "optimized"
	SeoStatusNeedsWork = "needs_work"
	SeoStatusCritical  = "critical"
)

// 生成记录状态
const (
	GenerationStatusCompleted = "completed"
	GenerationStatusApplied   = "applied"
)

// ContentAudit 内容质量审计记录
type ContentAudit struct {
	OwnedModel
	TargetType string            `gorm:"size:32;index;not null;comment:审计对象类型" json:"target_type"`
	TargetID   string            `gorm:"size:36;index;comment:审计对象ID" json:"target_id"`
	Score      int               `gorm:"default:0;comment:评分" json:"score"`
	Status     string            `gorm:"size:32;index;comment:评分状态" json:"status"`
	Issues     datatypes.JSON    `gorm:"comment:问题列表" json:"issues"`
	Strengths  datatypes.JSON    `gorm:"comment:优势列表" json:"strengths"`
	Summary    datatypes.JSONMap `gorm:"comment:汇总" json:"summary"`
}

func (*ContentAudit) TableName() string {
	return "seo_audits"
}

// SeoGeneration SEO 文案生成记录
type SeoGeneration struct {
	OwnedModel
	Status      string                      `gorm:"size:32;index;comment:状态" json:"status"`
	Language    string                      `gorm:"size:16;comment:语言" json:"language"`
	ProductIDs  datatypes.JSONSlice[string] `gorm:"comment:商品ID列表" json:"product_ids"`
	Suggestions datatypes.JSON              `gorm:"comment:生成结果" json:"suggestions"`
	AppliedAt   *time.Time                  `json:"applied_at"`
}

func (*SeoGeneration) TableName() string {
	return "seo_generations"
}
