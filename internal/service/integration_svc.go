package service

import (
	"context"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/pkg/apperr"
)

// IntegrationService 销售平台集成概要（只读）
type IntegrationService struct {
	repo repository.IntegrationRepository
}

func NewIntegrationService(repo repository.IntegrationRepository) *IntegrationService {
	return &IntegrationService{repo: repo}
}

// List 分页查询，凭证不会出现在结果中
func (s *IntegrationService) List(ctx context.Context, userID string, page dto.PageQuery) ([]dto.IntegrationResponse, int64, error) {
	page.Normalize()
	list, total, err := s.repo.List(ctx, userID, page.Page, page.PerPage)
	if err != nil {
		return nil, 0, apperr.Store(err)
	}

	items := make([]dto.IntegrationResponse, 0, len(list))
	for i := range list {
		items = append(items, toIntegrationResponse(&list[i]))
	}
	return items, total, nil
}

func toIntegrationResponse(i *model.Integration) dto.IntegrationResponse {
	return dto.IntegrationResponse{
		ID:           i.ID,
		Platform:     i.Platform,
		ShopName:     i.ShopName,
		ShopURL:      i.ShopURL,
		Status:       i.Status,
		LastSyncAt:   i.LastSyncAt,
		ProductCount: i.ProductCount,
		Connected:    i.IsConnected(),
	}
}
