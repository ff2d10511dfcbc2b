package repository

import (
	"context"

	"gorm.io/gorm"

	"catalog_gateway/internal/model"
)

// IntegrationRepository 平台连接仓储
type IntegrationRepository interface {
	Create(ctx context.Context, integration *model.Integration) error
	List(ctx context.Context, userID string, page, pageSize int) ([]model.Integration, int64, error)
}

type integrationRepo struct {
	db *gorm.DB
}

// NewIntegrationRepository 创建平台连接仓储
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepo{db: db}
}

func (r *integrationRepo) Create(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Create(integration).Error
}

func (r *integrationRepo) List(ctx context.Context, userID string, page, pageSize int) ([]model.Integration, int64, error) {
	var list []model.Integration
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Integration{}).Scopes(OwnedBy(userID))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Scopes(Paginate(page, pageSize)).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
