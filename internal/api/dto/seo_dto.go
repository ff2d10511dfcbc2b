package dto

import (
	"time"

	"catalog_gateway/internal/api/response"
)

// ==================== 请求 DTO ====================

// AuditProductsRequest 批量评分
type AuditProductsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,max=100"`
}

// ListScoresRequest 全目录评分
type ListScoresRequest struct {
	PageQuery
	Sort   string `form:"sort"` // score_asc | score_desc | name
	Status string `form:"status"`
}

// ListAuditsRequest 审计记录列表
type ListAuditsRequest struct {
	PageQuery
	TargetType string `form:"target_type"`
}

// CreateAuditRequest 创建审计
type CreateAuditRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=product catalog"`
	TargetID   string `json:"target_id"`
}

// GenerateSeoRequest 生成 SEO 建议
type GenerateSeoRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,max=50"`
	Language   string   `json:"language"`
}

// ApplySeoRequest 应用 SEO 内容，二选一：product_id+fields 或 generation_id
type ApplySeoRequest struct {
	ProductID    string         `json:"product_id"`
	Fields       map[string]any `json:"fields"`
	GenerationID string         `json:"generation_id"`
}

// ==================== 响应 DTO ====================

// SeoIssue 未满足的规则
type SeoIssue struct {
	ID             string `json:"id"`
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// BusinessImpact 业务影响估计
type BusinessImpact struct {
	TrafficImpact           string `json:"traffic_impact"`
	ConversionImpact        string `json:"conversion_impact"`
	EstimatedTrafficGain    int    `json:"estimated_traffic_gain"`
	EstimatedConversionGain int    `json:"estimated_conversion_gain"`
	Priority                string `json:"priority"`
}

// ProductScore 单个商品评分
type ProductScore struct {
	ProductID      string         `json:"product_id"`
	Name           string         `json:"name"`
	Score          int            `json:"score"`
	Status         string         `json:"status"`
	Issues         []SeoIssue     `json:"issues"`
	Strengths      []string       `json:"strengths"`
	BusinessImpact BusinessImpact `json:"business_impact"`
}

// ScoreStats 评分汇总
type ScoreStats struct {
	Total     int     `json:"total"`
	AvgScore  float64 `json:"avg_score"`
	Optimized int     `json:"optimized"`
	NeedsWork int     `json:"needs_work"`
	Critical  int     `json:"critical"`
}

// ScoresResponse 全目录评分
type ScoresResponse struct {
	Items []ProductScore `json:"items"`
	Meta  response.Meta  `json:"meta"`
	Stats ScoreStats     `json:"stats"`
}

// AuditProductsResponse 批量评分结果
type AuditProductsResponse struct {
	Items    []ProductScore `json:"items"`
	Stats    ScoreStats     `json:"stats"`
	AuditIDs []string       `json:"audit_ids"`
}

// SeoSuggestion 单个商品的生成建议
type SeoSuggestion struct {
	ProductID      string `json:"product_id"`
	SeoTitle       string `json:"seo_title"`
	SeoDescription string `json:"seo_description"`
	CurrentScore   int    `json:"current_score"`
	ProjectedScore int    `json:"projected_score"`
}

// GenerationResponse 生成记录
type GenerationResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Language    string          `json:"language"`
	ProductIDs  []string        `json:"product_ids"`
	Suggestions []SeoSuggestion `json:"suggestions"`
	AppliedAt   *time.Time      `json:"applied_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ApplySeoResponse 应用结果
type ApplySeoResponse struct {
	Applied  int            `json:"applied"`
	Products []ProductScore `json:"products"`
}
