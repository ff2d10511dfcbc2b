package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 任务状态
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"

	// 任务明细状态
	JobItemStatusPending    = "pending"
	JobItemStatusProcessing = "processing"
	JobItemStatusSuccess    = "success"
	JobItemStatusError      = "error"
	JobItemStatusSkipped    = "skipped"

	// 任务类型
	JobTypeImport       = "import"
	JobTypeAIEnrichment = "ai_enrichment"
)

// ==================== 数据库模型 ====================

// Job 异步任务（导入等长耗时操作），由后台 worker 执行，网关只负责状态流转
type Job struct {
	OwnedModel
	JobType         string            `gorm:"size:64;index;not null;comment:任务类型" json:"job_type"`
	JobSubtype      string            `gorm:"size:64;comment:任务子类型" json:"job_subtype"`
	Name            string            `gorm:"size:255;comment:任务名称" json:"name"`
	Status          string            `gorm:"size:32;index;default:pending;comment:任务状态" json:"status"`
	InputData       datatypes.JSONMap `gorm:"comment:任务输入" json:"input_data"`
	TotalItems      int               `gorm:"default:0;comment:总条数" json:"total_items"`
	ProcessedItems  int               `gorm:"default:0;comment:已处理条数" json:"processed_items"`
	FailedItems     int               `gorm:"default:0;comment:失败条数" json:"failed_items"`
	ProgressPercent int               `gorm:"default:0;comment:进度百分比" json:"progress_percent"`
	StartedAt       *time.Time        `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
	ErrorMessage    string            `gorm:"size:1024;comment:错误信息" json:"error_message"`
	Metadata        datatypes.JSONMap `gorm:"comment:附加信息" json:"metadata"`
	IdempotencyKey  string            `gorm:"size:128;index;comment:幂等键" json:"-"`
}

func (*Job) TableName() string {
	return "jobs"
}

// BeforeSave 保证 processed_items 不超过 total_items
func (j *Job) BeforeSave(tx *gorm.DB) error {
	j.ClampCounters()
	return nil
}

// ClampCounters 修正计数器
func (j *Job) ClampCounters() {
	if j.TotalItems < 0 {
		j.TotalItems = 0
	}
	if j.ProcessedItems < 0 {
		j.ProcessedItems = 0
	}
	if j.ProcessedItems > j.TotalItems {
		j.ProcessedItems = j.TotalItems
	}
	if j.FailedItems < 0 {
		j.FailedItems = 0
	}
	if j.FailedItems > j.ProcessedItems {
		j.FailedItems = j.ProcessedItems
	}
}

// RecomputeProgress 按计数器重算进度
func (j *Job) RecomputeProgress() {
	j.ClampCounters()
	if j.TotalItems == 0 {
		j.ProgressPercent = 0
		return
	}
	j.ProgressPercent = int(math.Round(float64(j.ProcessedItems) * 100 / float64(j.TotalItems)))
}

// Remaining 剩余条数
func (j *Job) Remaining() int {
	if r := j.TotalItems - j.ProcessedItems; r > 0 {
		return r
	}
	return 0
}

// IsTerminal 是否终态
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanCancel 已完成或已取消的任务不可取消
func (j *Job) CanCancel() bool {
	return j.Status != JobStatusCompleted && j.Status != JobStatusCancelled
}

// CanResume 仅取消或失败的任务可恢复
func (j *Job) CanResume() bool {
	return j.Status == JobStatusCancelled || j.Status == JobStatusFailed
}

// ETASeconds 根据已用时间估算剩余秒数
// 未开始、无总数或尚未处理任何条目时返回 nil
func (j *Job) ETASeconds(now time.Time) *int64 {
	if j.StartedAt == nil || j.TotalItems <= 0 || j.ProcessedItems <= 0 {
		return nil
	}
	elapsedMs := float64(now.Sub(*j.StartedAt).Milliseconds())
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	perItemMs := elapsedMs / float64(j.ProcessedItems)
	eta := int64(math.Round(float64(j.Remaining()) * perItemMs / 1000))
	return &eta
}

// JobItem 任务明细
type JobItem struct {
	BaseModel
	JobID       string     `gorm:"size:36;index;not null;comment:任务ID" json:"job_id"`
	Status      string     `gorm:"size:32;index;default:pending;comment:明细状态" json:"status"`
	ErrorCode   string     `gorm:"size:64;comment:错误码" json:"error_code"`
	Message     string     `gorm:"size:1024;comment:处理信息" json:"message"`
	ProductID   string     `gorm:"size:36;index;comment:产出的商品ID" json:"product_id"`
	ProcessedAt *time.Time `json:"processed_at"`

	// 关联
	Job *Job `gorm:"foreignKey:JobID" json:"-"`
}

func (*JobItem) TableName() string {
	return "job_items"
}
