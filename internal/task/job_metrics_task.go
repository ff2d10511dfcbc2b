package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"catalog_gateway/internal/metrics"
	"catalog_gateway/internal/model"
	"catalog_gateway/pkg/logging"
)

// ==================== 接口定义 ====================

// JobCounter 按状态统计任务数
type JobCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// 始终上报的状态，没有任务时为 0
var reportedJobStatuses = []string{
	model.JobStatusPending,
	model.JobStatusProcessing,
	model.JobStatusCompleted,
	model.JobStatusFailed,
	model.JobStatusCancelled,
}

// ==================== JobMetricsTask 任务指标采样 ====================

// JobMetricsTask 定时采样各状态任务数写入指标，只读不改状态
type JobMetricsTask struct {
	counter JobCounter
	cron    *cron.Cron
	spec    string
	timeout time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// NewJobMetricsTask 创建采样任务，spec 为空时每 30 秒一次
func NewJobMetricsTask(counter JobCounter, spec string) *JobMetricsTask {
	if spec == "" {
		spec = "*/30 * * * * *"
	}
	return &JobMetricsTask{
		counter: counter,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		timeout: 10 * time.Second,
	}
}

// Start 启动定时任务，启动时先采样一次
func (t *JobMetricsTask) Start() error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.Collect(ctx)
	}()

	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.Collect(ctx)
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	logging.Info().Str("spec", t.spec).Msg("[JobMetricsTask] 任务指标采样已启动")
	return nil
}

// Stop 停止任务，等待正在执行的采样结束
func (t *JobMetricsTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	logging.Info().Msg("[JobMetricsTask] 已停止")
}

// Collect 执行一次采样
func (t *JobMetricsTask) Collect(ctx context.Context) {
	counts, err := t.counter.CountByStatus(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("[JobMetricsTask] 统计任务状态失败")
		return
	}

	for _, status := range reportedJobStatuses {
		metrics.JobsByStatus.WithLabelValues(status).Set(float64(counts[status]))
	}
	// 非标准状态也如实上报
	for status, n := range counts {
		if !isReportedStatus(status) {
			metrics.JobsByStatus.WithLabelValues(status).Set(float64(n))
		}
	}

	t.mu.Lock()
	t.lastRun = time.Now()
	t.mu.Unlock()
}

// LastRun 最近一次成功采样时间
func (t *JobMetricsTask) LastRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun
}

func isReportedStatus(status string) bool {
	for _, s := range reportedJobStatuses {
		if s == status {
			return true
		}
	}
	return false
}
