package dto

import "catalog_gateway/internal/model"

// ==================== 请求 DTO ====================

// JobSource 导入来源
type JobSource struct {
	Type  string `json:"type" binding:"required"`
	Value any    `json:"value" binding:"required"`
}

// CreateJobRequest 创建导入任务
type CreateJobRequest struct {
	Source     *JobSource     `json:"source" binding:"required"`
	Name       string         `json:"name"`
	JobType    string         `json:"job_type"`
	JobSubtype string         `json:"job_subtype"`
	TotalItems int            `json:"total_items" binding:"min=0"`
	Options    map[string]any `json:"options"`
}

// ListJobsRequest 任务列表查询，status 支持 "a,b" 或 "a|b"
type ListJobsRequest struct {
	PageQuery
	Status  string `form:"status"`
	JobType string `form:"job_type"`
}

// ListJobItemsRequest 明细列表查询
type ListJobItemsRequest struct {
	PageQuery
	Status string `form:"status"`
}

// RetryJobRequest 重试请求，only_failed 缺省为 true
type RetryJobRequest struct {
	OnlyFailed *bool `json:"only_failed"`
}

// EnrichJobRequest AI 补全请求
type EnrichJobRequest struct {
	JobID    string `json:"job_id" binding:"required"`
	Language string `json:"language"`
	Tone     string `json:"tone"`
}

// ==================== 响应 DTO ====================

// JobActionResponse 任务动作结果
type JobActionResponse struct {
	ID           string `json:"id,omitempty"`
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	Remaining    *int   `json:"remaining,omitempty"`
	ReplayedFrom string `json:"replayed_from,omitempty"`
	Requeued     *int64 `json:"requeued,omitempty"`
}

// JobProgress 进度快照
type JobProgress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Percent   int `json:"percent"`
}

// JobDetailResponse 任务详情，eta_seconds 仅在可估算时输出
type JobDetailResponse struct {
	*model.Job
	Progress   JobProgress `json:"progress"`
	ETASeconds *int64      `json:"eta_seconds,omitempty"`
}

// EnrichJobResponse AI 补全结果
type EnrichJobResponse struct {
	Success       bool   `json:"success"`
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	ProductsCount int    `json:"products_count"`
}
