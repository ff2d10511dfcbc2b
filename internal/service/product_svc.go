package service

import (
	"context"
	"math"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// ProductService 商品目录服务，所有操作都限定在调用方名下
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ==================== 查询 ====================

// List 分页查询，最新的在前
func (s *ProductService) List(ctx context.Context, userID string, req dto.ListProductsRequest) ([]model.Product, int64, error) {
	req.Normalize()
	products, total, err := s.repo.List(ctx, repository.ProductFilter{
		UserID:   userID,
		Status:   req.Status,
		Category: req.Category,
		Keyword:  req.Q,
		LowStock: req.LowStock,
		Page:     req.Page,
		PageSize: req.PerPage,
	})
	if err != nil {
		return nil, 0, apperr.Store(err)
	}
	return products, total, nil
}

// Get 获取单个商品，非本人商品视为不存在
func (s *ProductService) Get(ctx context.Context, userID, id string) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "Product")
	}
	return product, nil
}

// ==================== 写入 ====================

// Create 创建商品，归属强制为调用方，状态缺省为 draft
func (s *ProductService) Create(ctx context.Context, userID string, input map[string]any) (*model.Product, error) {
	fields, err := FilterProductFields(input)
	if err != nil {
		return nil, err
	}

	product := &model.Product{Status: model.ProductStatusDraft}
	applyProductFields(product, fields)
	product.UserID = userID

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperr.Store(err)
	}

	logging.Ctx(ctx).Info().Str("product_id", product.ID).Msg("商品已创建")
	return product, nil
}

// Update 部分更新，只写入白名单字段
func (s *ProductService) Update(ctx context.Context, userID, id string, input map[string]any) (*model.Product, error) {
	fields, err := FilterProductFields(input)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateFields(ctx, userID, id, fields)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if rows == 0 {
		return nil, apperr.NotFound("Product")
	}

	return s.Get(ctx, userID, id)
}

// BulkUpdate 对多个商品应用同一份更新，owner 过滤由仓储层强制
func (s *ProductService) BulkUpdate(ctx context.Context, userID string, req dto.BulkUpdateProductsRequest) (int64, error) {
	if len(req.ProductIDs) == 0 {
		return 0, apperr.Validation("product_ids is required")
	}
	fields, err := FilterProductFields(req.Updates)
	if err != nil {
		return 0, err
	}

	rows, err := s.repo.BulkUpdate(ctx, userID, req.ProductIDs, fields)
	if err != nil {
		return 0, apperr.Store(err)
	}

	logging.Ctx(ctx).Info().
		Int("requested", len(req.ProductIDs)).
		Int64("updated", rows).
		Msg("批量更新商品")
	return rows, nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	rows, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperr.Store(err)
	}
	if rows == 0 {
		return apperr.NotFound("Product")
	}
	return nil
}

// ==================== 统计 ====================

// Stats 单次遍历调用方全部商品计算汇总，金额与百分比保留两位小数
func (s *ProductService) Stats(ctx context.Context, userID string) (*dto.ProductStatsResponse, error) {
	products, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return ComputeProductStats(products), nil
}

// ComputeProductStats 计算商品汇总
func ComputeProductStats(products []model.Product) *dto.ProductStatsResponse {
	stats := &dto.ProductStatsResponse{
		Total:    len(products),
		ByStatus: make(map[string]int, len(model.ProductStatuses)),
	}
	for status := range model.ProductStatuses {
		stats.ByStatus[status] = 0
	}

	var priceSum, value, cost float64
	for i := range products {
		p := &products[i]
		stats.ByStatus[p.Status]++

		if p.IsLowStock() {
			stats.LowStock++
		}
		if p.IsOutOfStock() {
			stats.OutOfStock++
		}

		qty := float64(p.StockQuantity)
		priceSum += p.Price
		value += p.Price * qty
		cost += p.CostPrice * qty
	}

	stats.Active = stats.ByStatus[model.ProductStatusActive]
	stats.Draft = stats.ByStatus[model.ProductStatusDraft]
	stats.Inactive = stats.ByStatus[model.ProductStatusInactive]
	stats.Archived = stats.ByStatus[model.ProductStatusArchived]

	stats.TotalValue = round2(value)
	stats.TotalCost = round2(cost)
	stats.TotalProfit = round2(value - cost)
	if stats.Total > 0 {
		stats.AvgPrice = round2(priceSum / float64(stats.Total))
	}
	if value > 0 {
		stats.ProfitMargin = round2((value - cost) / value * 100)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
