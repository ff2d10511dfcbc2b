package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/metrics"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// 任务动作
const (
	JobActionRetry  = "retry"
	JobActionCancel = "cancel"
	JobActionResume = "resume"
	JobActionReplay = "replay"
)

// ==================== 服务实现 ====================

// JobService 异步任务编排
// 只负责创建与状态流转，具体条目由外部 worker 执行
type JobService struct {
	uow *repository.JobUnitOfWork
	now func() time.Time
}

// NewJobService 创建任务服务
func NewJobService(uow *repository.JobUnitOfWork) *JobService {
	return &JobService{uow: uow, now: time.Now}
}

// SetClock 替换时钟（测试用）
func (s *JobService) SetClock(now func() time.Time) {
	s.now = now
}

// ==================== 创建 ====================

// Create 创建 pending 任务
// 携带幂等键时，同一调用方的相同键直接返回已有任务，created=false
func (s *JobService) Create(ctx context.Context, userID, idempotencyKey string, req dto.CreateJobRequest) (*model.Job, bool, error) {
	if req.Source == nil || strings.TrimSpace(req.Source.Type) == "" || req.Source.Value == nil {
		return nil, false, apperr.Validation("source.type and source.value are required")
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.uow.Jobs.GetByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			logging.Ctx(ctx).Info().
				Str("job_id", existing.ID).
				Str("idempotency_key", idempotencyKey).
				Msg("幂等键命中，返回已有任务")
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperr.Store(err)
		}
	}

	job := &model.Job{
		JobType:    req.JobType,
		JobSubtype: req.JobSubtype,
		Name:       strings.TrimSpace(req.Name),
		Status:     model.JobStatusPending,
		InputData: datatypes.JSONMap{
			"source": map[string]any{
				"type":  req.Source.Type,
				"value": req.Source.Value,
			},
		},
		TotalItems:     req.TotalItems,
		Metadata:       datatypes.JSONMap{},
		IdempotencyKey: idempotencyKey,
	}
	job.UserID = userID

	if job.JobType == "" {
		job.JobType = model.JobTypeImport
	}
	if job.JobSubtype == "" {
		job.JobSubtype = req.Source.Type
	}
	if job.Name == "" {
		job.Name = fmt.Sprintf("%s %s", job.JobSubtype, job.JobType)
	}
	if len(req.Options) > 0 {
		job.InputData["options"] = req.Options
	}
	if values, ok := req.Source.Value.([]any); ok && job.TotalItems == 0 {
		job.TotalItems = len(values)
	}
	if idempotencyKey != "" {
		job.Metadata["idempotency_key"] = idempotencyKey
	}

	if err := s.uow.Jobs.Create(ctx, job); err != nil {
		// 并发请求先插入了同键任务，唯一索引拒绝本次写入
		if idempotencyKey != "" {
			if existing, lookupErr := s.uow.Jobs.GetByIdempotencyKey(ctx, userID, idempotencyKey); lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, apperr.Store(err)
	}

	metrics.JobTransitions.WithLabelValues("create").Inc()
	logging.Ctx(ctx).Info().
		Str("job_id", job.ID).
		Str("job_type", job.JobType).
		Int("total_items", job.TotalItems).
		Msg("任务已创建")
	return job, true, nil
}

// ==================== 查询 ====================

// List 分页查询任务，status 支持逗号或竖线分隔的多个值
func (s *JobService) List(ctx context.Context, userID string, req dto.ListJobsRequest) ([]model.Job, int64, error) {
	req.Normalize()
	jobs, total, err := s.uow.Jobs.List(ctx, repository.JobFilter{
		UserID:   userID,
		Statuses: ParseStatusList(req.Status),
		JobType:  req.JobType,
		Page:     req.Page,
		PageSize: req.PerPage,
	})
	if err != nil {
		return nil, 0, apperr.Store(err)
	}
	return jobs, total, nil
}

// ParseStatusList 解析 "a,b" / "a|b"
func ParseStatusList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|'
	})
	statuses := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			statuses = append(statuses, p)
		}
	}
	return statuses
}

// Get 任务详情，可估算时附带 eta_seconds
func (s *JobService) Get(ctx context.Context, userID, id string) (*dto.JobDetailResponse, error) {
	job, err := s.uow.Jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "Job")
	}
	return &dto.JobDetailResponse{
		Job: job,
		Progress: dto.JobProgress{
			Total:     job.TotalItems,
			Processed: job.ProcessedItems,
			Failed:    job.FailedItems,
			Percent:   job.ProgressPercent,
		},
		ETASeconds: job.ETASeconds(s.now()),
	}, nil
}

// Items 任务明细，最早的在前
func (s *JobService) Items(ctx context.Context, userID, id string, req dto.ListJobItemsRequest) ([]model.JobItem, int64, error) {
	if _, err := s.uow.Jobs.GetByID(ctx, userID, id); err != nil {
		return nil, 0, apperr.FromStore(err, "Job")
	}

	req.Normalize()
	items, total, err := s.uow.Items.List(ctx, repository.JobItemFilter{
		JobID:    id,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PerPage,
	})
	if err != nil {
		return nil, 0, apperr.Store(err)
	}
	return items, total, nil
}

// ==================== 状态流转 ====================

// Retry 重置明细与任务为 pending
// onlyFailed=true 时只重排 error 明细：processed 扣除重排条数，failed 归零
// onlyFailed=false 时重排全部明细：processed 与 failed 都归零
// 读取后任务被 worker 改动则返回 INVALID_STATE，明细随事务回滚
func (s *JobService) Retry(ctx context.Context, userID, id string, onlyFailed bool) (*dto.JobActionResponse, error) {
	var result *dto.JobActionResponse

	err := s.uow.Transaction(ctx, func(tx *repository.JobUnitOfWork) error {
		job, err := tx.Jobs.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return apperr.FromStore(err, "Job")
		}

		var from []string
		if onlyFailed {
			from = []string{model.JobItemStatusError}
		}
		requeued, err := tx.Items.ResetToPending(ctx, job.ID, from)
		if err != nil {
			return apperr.Store(err)
		}

		next := *job
		next.FailedItems = 0
		updates := map[string]interface{}{
			"status":        model.JobStatusPending,
			"failed_items":  0,
			"completed_at":  nil,
			"error_message": "",
		}
		if onlyFailed {
			next.ProcessedItems -= int(requeued)
		} else {
			next.ProcessedItems = 0
			updates["started_at"] = nil
		}
		next.RecomputeProgress()
		updates["processed_items"] = next.ProcessedItems
		updates["progress_percent"] = next.ProgressPercent

		affected, err := tx.Jobs.Transition(ctx, userID, job.ID, repository.JobTransition{
			Expect:  job,
			Updates: updates,
		})
		if err != nil {
			return apperr.Store(err)
		}
		if affected == 0 {
			return rejectTransition(ctx, tx, userID, job.ID, "Job changed while retrying, current status is %s")
		}

		result = &dto.JobActionResponse{JobID: job.ID, Status: model.JobStatusPending, Requeued: &requeued}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.JobTransitions.WithLabelValues(JobActionRetry).Inc()
	logging.Ctx(ctx).Info().
		Str("job_id", id).
		Bool("only_failed", onlyFailed).
		Int64("requeued", *result.Requeued).
		Msg("任务已重试")
	return result, nil
}

// Cancel 协作式取消，只修改状态与完成时间，由 worker 自行感知并停止
func (s *JobService) Cancel(ctx context.Context, userID, id string) (*dto.JobActionResponse, error) {
	affected, err := s.uow.Jobs.Transition(ctx, userID, id, repository.JobTransition{
		ExceptStatuses: []string{model.JobStatusCompleted, model.JobStatusCancelled},
		Updates: map[string]interface{}{
			"status":       model.JobStatusCancelled,
			"completed_at": s.now(),
		},
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	if affected == 0 {
		return nil, rejectTransition(ctx, s.uow, userID, id, "Job is already %s")
	}

	metrics.JobTransitions.WithLabelValues(JobActionCancel).Inc()
	logging.Ctx(ctx).Info().Str("job_id", id).Msg("任务已取消")
	return &dto.JobActionResponse{JobID: id, Status: model.JobStatusCancelled}, nil
}

// Resume 恢复已取消或失败的任务：error 明细重排，清除完成时间
func (s *JobService) Resume(ctx context.Context, userID, id string) (*dto.JobActionResponse, error) {
	var result *dto.JobActionResponse

	err := s.uow.Transaction(ctx, func(tx *repository.JobUnitOfWork) error {
		job, err := tx.Jobs.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return apperr.FromStore(err, "Job")
		}
		if !job.CanResume() {
			return apperr.InvalidState(fmt.Sprintf("Cannot resume a job that is %s", job.Status))
		}

		if _, err := tx.Items.ResetToPending(ctx, job.ID, []string{model.JobItemStatusError}); err != nil {
			return apperr.Store(err)
		}

		affected, err := tx.Jobs.Transition(ctx, userID, job.ID, repository.JobTransition{
			Expect: job,
			Updates: map[string]interface{}{
				"status":        model.JobStatusPending,
				"completed_at":  nil,
				"error_message": "",
			},
		})
		if err != nil {
			return apperr.Store(err)
		}
		if affected == 0 {
			return rejectTransition(ctx, tx, userID, job.ID, "Cannot resume a job that is %s")
		}

		remaining := job.Remaining()
		result = &dto.JobActionResponse{JobID: job.ID, Status: model.JobStatusPending, Remaining: &remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.JobTransitions.WithLabelValues(JobActionResume).Inc()
	logging.Ctx(ctx).Info().Str("job_id", id).Int("remaining", *result.Remaining).Msg("任务已恢复")
	return result, nil
}

// rejectTransition 条件更新未命中时重新读取：不存在为 NOT_FOUND，否则 INVALID_STATE
func rejectTransition(ctx context.Context, uow *repository.JobUnitOfWork, userID, id, format string) error {
	current, err := uow.Jobs.GetByID(ctx, userID, id)
	if err != nil {
		return apperr.FromStore(err, "Job")
	}
	return apperr.InvalidState(fmt.Sprintf(format, current.Status))
}

// Replay 以原任务的类型与输入创建新任务，原任务不变
func (s *JobService) Replay(ctx context.Context, userID, id string) (*dto.JobActionResponse, error) {
	original, err := s.uow.Jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "Job")
	}

	replay := &model.Job{
		JobType:    original.JobType,
		JobSubtype: original.JobSubtype,
		Name:       original.Name + " (replay)",
		Status:     model.JobStatusPending,
		InputData:  cloneJSONMap(original.InputData),
		TotalItems: original.TotalItems,
		Metadata:   datatypes.JSONMap{"replayed_from": original.ID},
	}
	replay.UserID = userID

	if err := s.uow.Jobs.Create(ctx, replay); err != nil {
		return nil, apperr.Store(err)
	}

	metrics.JobTransitions.WithLabelValues(JobActionReplay).Inc()
	logging.Ctx(ctx).Info().
		Str("job_id", replay.ID).
		Str("replayed_from", original.ID).
		Msg("任务已重放")
	return &dto.JobActionResponse{JobID: replay.ID, Status: replay.Status, ReplayedFrom: original.ID}, nil
}

// Perform 按动作名分发，未知动作返回 INVALID_ACTION
func (s *JobService) Perform(ctx context.Context, userID, id, action string, onlyFailed bool) (*dto.JobActionResponse, error) {
	switch action {
	case JobActionRetry:
		return s.Retry(ctx, userID, id, onlyFailed)
	case JobActionCancel:
		return s.Cancel(ctx, userID, id)
	case JobActionResume:
		return s.Resume(ctx, userID, id)
	case JobActionReplay:
		return s.Replay(ctx, userID, id)
	}
	return nil, apperr.InvalidAction(action)
}

// ==================== AI 补全 ====================

// Enrich 为导入任务成功产出的商品创建 ai_enrichment 任务，每个商品一条 pending 明细
func (s *JobService) Enrich(ctx context.Context, userID string, req dto.EnrichJobRequest) (*dto.EnrichJobResponse, error) {
	var result *dto.EnrichJobResponse

	err := s.uow.Transaction(ctx, func(tx *repository.JobUnitOfWork) error {
		source, err := tx.Jobs.GetByID(ctx, userID, req.JobID)
		if err != nil {
			return apperr.FromStore(err, "Job")
		}

		productIDs, err := tx.Items.ProductIDsByStatus(ctx, source.ID, model.JobItemStatusSuccess)
		if err != nil {
			return apperr.Store(err)
		}
		if len(productIDs) == 0 {
			return apperr.Validation("Source job has no imported products")
		}

		language := req.Language
		if language == "" {
			language = "en"
		}
		tone := req.Tone
		if tone == "" {
			tone = "professional"
		}

		job := &model.Job{
			JobType:    model.JobTypeAIEnrichment,
			JobSubtype: "product_content",
			Name:       "AI enrichment: " + source.Name,
			Status:     model.JobStatusPending,
			InputData: datatypes.JSONMap{
				"source_job_id": source.ID,
				"product_ids":   productIDs,
				"language":      language,
				"tone":          tone,
			},
			TotalItems: len(productIDs),
			Metadata:   datatypes.JSONMap{"source_job_id": source.ID},
		}
		job.UserID = userID
		if err := tx.Jobs.Create(ctx, job); err != nil {
			return apperr.Store(err)
		}

		items := make([]model.JobItem, 0, len(productIDs))
		for _, pid := range productIDs {
			items = append(items, model.JobItem{
				JobID:     job.ID,
				Status:    model.JobItemStatusPending,
				ProductID: pid,
			})
		}
		if err := tx.Items.CreateBatch(ctx, items); err != nil {
			return apperr.Store(err)
		}

		result = &dto.EnrichJobResponse{
			Success:       true,
			JobID:         job.ID,
			Status:        job.Status,
			ProductsCount: len(productIDs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.JobTransitions.WithLabelValues("enrich").Inc()
	return result, nil
}

func cloneJSONMap(src datatypes.JSONMap) datatypes.JSONMap {
	dst := make(datatypes.JSONMap, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
