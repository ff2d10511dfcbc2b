package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/pkg/apperr"
)

func newTestSeoService(t *testing.T) (*SeoService, *gorm.DB) {
	db := setupServiceTestDB(t)
	products := repository.NewProductRepository(db)
	svc := NewSeoService(
		products,
		repository.NewSeoAuditRepository(db),
		repository.NewSeoGenerationRepository(db),
		NewProductService(products),
	)
	return svc, db
}

func seedScoredProducts(t *testing.T, db *gorm.DB) (optimized, weak *model.Product) {
	optimized = fullyOptimizedProduct()
	optimized.UserID = "u-1"
	seedProduct(t, db, optimized)

	weak = ownedProduct("u-1", "Bare")
	seedProduct(t, db, weak)
	return optimized, weak
}

func TestSeoService_ScoreOne(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()
	optimized, _ := seedScoredProducts(t, db)

	score, err := svc.ScoreOne(ctx, "u-1", optimized.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, score.Score)

	_, err = svc.ScoreOne(ctx, "u-2", optimized.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestSeoService_AuditProductsPersistsHistory(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()
	optimized, weak := seedScoredProducts(t, db)

	resp, err := svc.AuditProducts(ctx, "u-1", []string{optimized.ID, weak.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Len(t, resp.AuditIDs, 2)
	assert.Equal(t, 2, resp.Stats.Total)

	history, total, err := svc.History(ctx, "u-1", weak.ID, dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, weak.ID, history[0].TargetID)
	assert.Equal(t, 20, history[0].Score)

	_, err = svc.AuditProducts(ctx, "u-2", []string{optimized.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = svc.AuditProducts(ctx, "u-1", nil)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestSeoService_CatalogScores(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()
	seedScoredProducts(t, db)

	resp, err := svc.CatalogScores(ctx, "u-1", dto.ListScoresRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 20, resp.Items[0].Score, "默认按分数升序")
	assert.Equal(t, 2, resp.Stats.Total)
	assert.Equal(t, 60.0, resp.Stats.AvgScore)

	resp, err = svc.CatalogScores(ctx, "u-1", dto.ListScoresRequest{Sort: SortScoreDesc})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Items[0].Score)

	resp, err = svc.CatalogScores(ctx, "u-1", dto.ListScoresRequest{Status: model.SeoStatusCritical})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 2, resp.Stats.Total, "统计覆盖全目录")

	resp, err = svc.CatalogScores(ctx, "u-1", dto.ListScoresRequest{PageQuery: dto.PageQuery{Page: 5}})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestSeoService_Audits(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()
	optimized, _ := seedScoredProducts(t, db)

	catalog, err := svc.CreateAudit(ctx, "u-1", dto.CreateAuditRequest{TargetType: model.AuditTargetCatalog})
	require.NoError(t, err)
	assert.Equal(t, 60, catalog.Score)
	assert.Equal(t, model.SeoStatusNeedsWork, catalog.Status)

	single, err := svc.CreateAudit(ctx, "u-1", dto.CreateAuditRequest{TargetType: model.AuditTargetProduct, TargetID: optimized.ID})
	require.NoError(t, err)
	assert.Equal(t, 100, single.Score)

	_, err = svc.CreateAudit(ctx, "u-1", dto.CreateAuditRequest{TargetType: model.AuditTargetProduct})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	got, err := svc.GetAudit(ctx, "u-1", catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuditTargetCatalog, got.TargetType)

	_, err = svc.GetAudit(ctx, "u-2", catalog.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	audits, total, err := svc.ListAudits(ctx, "u-1", dto.ListAuditsRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, audits, 2)
}

func TestSeoService_GenerateAndApply(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()

	p := ownedProduct("u-1", "Linen table runner")
	p.Brand = "Loom"
	p.Category = "Home Textiles"
	p.Description = strings.Repeat("Soft washed linen. ", 8)
	p.Images = []string{"https://cdn.example.com/runner.jpg"}
	seedProduct(t, db, p)

	gen, err := svc.Generate(ctx, "u-1", dto.GenerateSeoRequest{ProductIDs: []string{p.ID}})
	require.NoError(t, err)
	require.Len(t, gen.Suggestions, 1)
	assert.Equal(t, model.GenerationStatusCompleted, gen.Status)

	fetched, err := svc.GetGeneration(ctx, "u-1", gen.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.Suggestions, fetched.Suggestions)

	applied, err := svc.Apply(ctx, "u-1", dto.ApplySeoRequest{GenerationID: gen.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, applied.Applied)
	assert.Equal(t, 100, applied.Products[0].Score)

	after, err := svc.GetGeneration(ctx, "u-1", gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusApplied, after.Status)
	assert.NotNil(t, after.AppliedAt)
}

func TestSeoService_ApplyFieldsUsesAllowlist(t *testing.T) {
	svc, db := newTestSeoService(t)
	ctx := context.Background()
	p := seedProduct(t, db, ownedProduct("u-1", "Mug"))

	resp, err := svc.Apply(ctx, "u-1", dto.ApplySeoRequest{
		ProductID: p.ID,
		Fields: map[string]any{
			"seo_title": strings.Repeat("t", 40),
			"user_id":   "u-9",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.Products[0].Score)

	var reloaded model.Product
	db.First(&reloaded, "id = ?", p.ID)
	assert.Equal(t, "u-1", reloaded.UserID)

	_, err = svc.Apply(ctx, "u-1", dto.ApplySeoRequest{ProductID: p.ID, Fields: map[string]any{"user_id": "u-9"}})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	_, err = svc.Apply(ctx, "u-1", dto.ApplySeoRequest{})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}
