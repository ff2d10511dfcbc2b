package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog_gateway/internal/model"
)

// ==================== 仓储接口 ====================

// JobRepository 异步任务仓储接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, userID, id string) (*model.Job, error)
	GetByIDForUpdate(ctx context.Context, userID, id string) (*model.Job, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Job, error)
	Transition(ctx context.Context, userID, id string, t JobTransition) (int64, error)
	List(ctx context.Context, filter JobFilter) ([]model.Job, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// JobItemRepository 任务明细仓储接口
type JobItemRepository interface {
	CreateBatch(ctx context.Context, items []model.JobItem) error
	List(ctx context.Context, filter JobItemFilter) ([]model.JobItem, int64, error)
	ResetToPending(ctx context.Context, jobID string, fromStatuses []string) (int64, error)
	ProductIDsByStatus(ctx context.Context, jobID, status string) ([]string, error)
}

// ==================== 过滤条件 ====================

// JobFilter 任务过滤条件
type JobFilter struct {
	UserID   string
	Statuses []string // 多个状态取并集
	JobType  string
	Page     int
	PageSize int
}

// JobTransition 条件更新
// 只写 Updates 中的列，WHERE 不满足时影响行数为 0
type JobTransition struct {
	ExceptStatuses []string   // 当前状态不能在其中
	Expect         *model.Job // 非空时要求状态与计数器仍是读取时的值
	Updates        map[string]interface{}
}

// JobItemFilter 明细过滤条件
type JobItemFilter struct {
	JobID    string
	Status   string
	Page     int
	PageSize int
}

// ==================== Job 仓储实现 ====================

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepository 创建任务仓储
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, userID, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIDForUpdate 事务内加行锁读取（sqlite 忽略锁）
func (r *jobRepo) GetByIDForUpdate(ctx context.Context, userID, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIdempotencyKey 按幂等键查找，未找到返回 gorm.ErrRecordNotFound
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("idempotency_key = ?", key).
		Order("created_at ASC").
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Transition 条件状态流转，返回影响行数
func (r *jobRepo) Transition(ctx context.Context, userID, id string, t JobTransition) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id)

	if len(t.ExceptStatuses) > 0 {
		query = query.Where("status NOT IN ?", t.ExceptStatuses)
	}
	if e := t.Expect; e != nil {
		query = query.Where(
			"status = ? AND total_items = ? AND processed_items = ? AND failed_items = ?",
			e.Status, e.TotalItems, e.ProcessedItems, e.FailedItems,
		)
	}

	result := query.Updates(t.Updates)
	return result.RowsAffected, result.Error
}

func (r *jobRepo) List(ctx context.Context, filter JobFilter) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Job{}).Scopes(OwnedBy(filter.UserID))

	if len(filter.Statuses) == 1 {
		query = query.Where("status = ?", filter.Statuses[0])
	} else if len(filter.Statuses) > 1 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.JobType != "" {
		query = query.Where("job_type = ?", filter.JobType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// CountByStatus 全局按状态计数（监控用）
func (r *jobRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ==================== JobItem 仓储实现 ====================

type jobItemRepo struct {
	db *gorm.DB
}

// NewJobItemRepository 创建任务明细仓储
func NewJobItemRepository(db *gorm.DB) JobItemRepository {
	return &jobItemRepo{db: db}
}

func (r *jobItemRepo) CreateBatch(ctx context.Context, items []model.JobItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// List 明细按创建时间正序
func (r *jobItemRepo) List(ctx context.Context, filter JobItemFilter) ([]model.JobItem, int64, error) {
	var items []model.JobItem
	var total int64

	query := r.db.WithContext(ctx).Model(&model.JobItem{}).Where("job_id = ?", filter.JobID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at ASC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ResetToPending 将指定状态的明细重置为 pending，fromStatuses 为空时重置全部
func (r *jobItemRepo) ResetToPending(ctx context.Context, jobID string, fromStatuses []string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.JobItem{}).Where("job_id = ?", jobID)
	if len(fromStatuses) > 0 {
		query = query.Where("status IN ?", fromStatuses)
	}

	result := query.Updates(map[string]interface{}{
		"status":       model.JobItemStatusPending,
		"error_code":   "",
		"message":      "",
		"processed_at": nil,
	})
	return result.RowsAffected, result.Error
}

// ProductIDsByStatus 指定状态下已产出商品的 ID
func (r *jobItemRepo) ProductIDsByStatus(ctx context.Context, jobID, status string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.JobItem{}).
		Where("job_id = ? AND status = ? AND product_id <> ''", jobID, status).
		Order("created_at ASC").
		Pluck("product_id", &ids).Error
	return ids, err
}

// ==================== 索引 ====================

// EnsureJobIndexes 创建 (user_id, idempotency_key) 部分唯一索引，空键不参与
func EnsureJobIndexes(db *gorm.DB) error {
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_owner_idempotency " +
			"ON jobs (user_id, idempotency_key) WHERE idempotency_key <> ''",
	).Error
}

// ==================== 工作单元 ====================

// JobUnitOfWork 任务工作单元（事务）
type JobUnitOfWork struct {
	db    *gorm.DB
	Jobs  JobRepository
	Items JobItemRepository
}

// NewJobUnitOfWork 创建工作单元
func NewJobUnitOfWork(db *gorm.DB) *JobUnitOfWork {
	return &JobUnitOfWork{
		db:    db,
		Jobs:  NewJobRepository(db),
		Items: NewJobItemRepository(db),
	}
}

// Transaction 执行事务
func (u *JobUnitOfWork) Transaction(ctx context.Context, fn func(uow *JobUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &JobUnitOfWork{
			db:    tx,
			Jobs:  NewJobRepository(tx),
			Items: NewJobItemRepository(tx),
		}
		return fn(txUow)
	})
}
