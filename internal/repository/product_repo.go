package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"catalog_gateway/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
// 所有读写都带 userID，保证只能访问本人的商品
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, userID, id string) (*model.Product, error)
	GetByIDs(ctx context.Context, userID string, ids []string) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListAll(ctx context.Context, userID string) ([]model.Product, error)
	UpdateFields(ctx context.Context, userID, id string, fields map[string]interface{}) (int64, error)
	BulkUpdate(ctx context.Context, userID string, ids []string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	UserID   string
	Status   string
	Category string
	Keyword  string // 标题或 SKU 模糊匹配
	LowStock bool
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

// OwnedBy 按归属用户过滤
func OwnedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Paginate 分页
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		if pageSize <= 0 {
			pageSize = 20
		}
		return db.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, userID, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, userID string, ids []string) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(OwnedBy(filter.UserID))

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		query = query.Where("stock_quantity > 0 AND stock_quantity < ?", model.LowStockThreshold)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) ListAll(ctx context.Context, userID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) UpdateFields(ctx context.Context, userID, id string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// BulkUpdate 批量更新，owner 过滤不可省略
func (r *productRepo) BulkUpdate(ctx context.Context, userID string, ids []string, fields map[string]interface{}) (int64, error) {
	if len(ids) == 0 || len(fields) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(OwnedBy(userID)).
		Where("id IN ?", ids).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *productRepo) Delete(ctx context.Context, userID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Delete(&model.Product{})
	return result.RowsAffected, result.Error
}
