package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
)

func TestIntegrationService_ListHidesCredentials(t *testing.T) {
	db := setupServiceTestDB(t)
	repo := repository.NewIntegrationRepository(db)
	svc := NewIntegrationService(repo)
	ctx := context.Background()

	shop := &model.Integration{
		Platform:    "shopify",
		ShopName:    "Oak & Co",
		Status:      model.IntegrationStatusActive,
		Credentials: map[string]any{"access_token": "secret-token"},
	}
	shop.UserID = "u-1"
	require.NoError(t, repo.Create(ctx, shop))

	other := &model.Integration{Platform: "etsy", Status: model.IntegrationStatusActive}
	other.UserID = "u-2"
	require.NoError(t, repo.Create(ctx, other))

	items, total, err := svc.List(ctx, "u-1", dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.True(t, items[0].Connected)
	assert.Equal(t, "Oak & Co", items[0].ShopName)

	raw, err := json.Marshal(items)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}
