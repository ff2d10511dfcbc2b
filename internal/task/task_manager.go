package task

import (
	"time"

	"catalog_gateway/pkg/logging"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 任务执行由外部 worker 负责，这里只有监控类任务
type TaskManager struct {
	jobMetricsTask *JobMetricsTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	JobCounter JobCounter
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	JobMetricsEnabled bool
	JobMetricsSpec    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		JobMetricsEnabled: true,
		JobMetricsSpec:    "*/30 * * * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.JobMetricsEnabled && deps.JobCounter != nil {
		tm.jobMetricsTask = NewJobMetricsTask(deps.JobCounter, cfg.JobMetricsSpec)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	logging.Info().Msg("[TaskManager] 正在启动后台任务...")

	if tm.jobMetricsTask != nil {
		if err := tm.jobMetricsTask.Start(); err != nil {
			return err
		}
	}

	logging.Info().Msg("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	logging.Info().Msg("[TaskManager] 正在停止后台任务...")

	if tm.jobMetricsTask != nil {
		tm.jobMetricsTask.Stop()
	}

	logging.Info().Msg("[TaskManager] 后台任务已全部停止")
}

// ==================== 状态查询 ====================

// TaskStatus 任务运行状态
type TaskStatus struct {
	Enabled bool       `json:"enabled"`
	LastRun *time.Time `json:"last_run,omitempty"`
}

// Status 获取任务状态，health 接口对外展示
func (tm *TaskManager) Status() map[string]TaskStatus {
	status := TaskStatus{Enabled: tm.jobMetricsTask != nil}
	if status.Enabled {
		if last := tm.jobMetricsTask.LastRun(); !last.IsZero() {
			status.LastRun = &last
		}
	}
	return map[string]TaskStatus{"job_metrics": status}
}
