package repository

import (
	"context"

	"gorm.io/gorm"

	"catalog_gateway/internal/model"
)

// ==================== 接口定义 ====================

// SeoAuditRepository 审计记录仓储
type SeoAuditRepository interface {
	Create(ctx context.Context, audit *model.ContentAudit) error
	CreateBatch(ctx context.Context, audits []model.ContentAudit) error
	GetByID(ctx context.Context, userID, id string) (*model.ContentAudit, error)
	List(ctx context.Context, filter AuditFilter) ([]model.ContentAudit, int64, error)
}

// SeoGenerationRepository 生成记录仓储
type SeoGenerationRepository interface {
	Create(ctx context.Context, gen *model.SeoGeneration) error
	GetByID(ctx context.Context, userID, id string) (*model.SeoGeneration, error)
	Save(ctx context.Context, gen *model.SeoGeneration) error
}

// AuditFilter 审计过滤条件
type AuditFilter struct {
	UserID     string
	TargetType string
	TargetID   string
	Page       int
	PageSize   int
}

// ==================== 审计仓储实现 ====================

type seoAuditRepo struct {
	db *gorm.DB
}

// NewSeoAuditRepository 创建审计仓储
func NewSeoAuditRepository(db *gorm.DB) SeoAuditRepository {
	return &seoAuditRepo{db: db}
}

func (r *seoAuditRepo) Create(ctx context.Context, audit *model.ContentAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *seoAuditRepo) CreateBatch(ctx context.Context, audits []model.ContentAudit) error {
	if len(audits) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&audits).Error
}

func (r *seoAuditRepo) GetByID(ctx context.Context, userID, id string) (*model.ContentAudit, error) {
	var audit model.ContentAudit
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// List 最新的在前
func (r *seoAuditRepo) List(ctx context.Context, filter AuditFilter) ([]model.ContentAudit, int64, error) {
	var audits []model.ContentAudit
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ContentAudit{}).Scopes(OwnedBy(filter.UserID))
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&audits).Error
	if err != nil {
		return nil, 0, err
	}

	return audits, total, nil
}

// ==================== 生成记录仓储实现 ====================

type seoGenerationRepo struct {
	db *gorm.DB
}

// NewSeoGenerationRepository 创建生成记录仓储
func NewSeoGenerationRepository(db *gorm.DB) SeoGenerationRepository {
	return &seoGenerationRepo{db: db}
}

func (r *seoGenerationRepo) Create(ctx context.Context, gen *model.SeoGeneration) error {
	return r.db.WithContext(ctx).Create(gen).Error
}

func (r *seoGenerationRepo) GetByID(ctx context.Context, userID, id string) (*model.SeoGeneration, error) {
	var gen model.SeoGeneration
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

func (r *seoGenerationRepo) Save(ctx context.Context, gen *model.SeoGeneration) error {
	return r.db.WithContext(ctx).Save(gen).Error
}
