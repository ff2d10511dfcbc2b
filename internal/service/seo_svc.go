package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// 全目录评分排序方式
const (
	SortScoreAsc  = "score_asc"
	SortScoreDesc = "score_desc"
	SortName      = "name"
)

// SeoService 内容质量评分、审计记录与文案建议
type SeoService struct {
	products    repository.ProductRepository
	audits      repository.SeoAuditRepository
	generations repository.SeoGenerationRepository
	productSvc  *ProductService
	now         func() time.Time
}

// NewSeoService 创建 SEO 服务
func NewSeoService(
	products repository.ProductRepository,
	audits repository.SeoAuditRepository,
	generations repository.SeoGenerationRepository,
	productSvc *ProductService,
) *SeoService {
	return &SeoService{
		products:    products,
		audits:      audits,
		generations: generations,
		productSvc:  productSvc,
		now:         time.Now,
	}
}

// ==================== 评分 ====================

// ScoreOne 单个商品评分
func (s *SeoService) ScoreOne(ctx context.Context, userID, productID string) (*dto.ProductScore, error) {
	product, err := s.products.GetByID(ctx, userID, productID)
	if err != nil {
		return nil, apperr.FromStore(err, "Product")
	}
	score := ScoreProduct(product)
	return &score, nil
}

// AuditProducts 按 ID 批量评分，每个商品保存一条审计记录
func (s *SeoService) AuditProducts(ctx context.Context, userID string, ids []string) (*dto.AuditProductsResponse, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("product_ids is required")
	}

	products, err := s.products.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(products) == 0 {
		return nil, apperr.NotFound("Products")
	}

	scores := make([]dto.ProductScore, 0, len(products))
	audits := make([]model.ContentAudit, 0, len(products))
	for i := range products {
		score := ScoreProduct(&products[i])
		scores = append(scores, score)

		audit, err := newProductAudit(userID, score)
		if err != nil {
			return nil, apperr.Internal(err.Error())
		}
		audits = append(audits, *audit)
	}

	if err := s.audits.CreateBatch(ctx, audits); err != nil {
		return nil, apperr.Store(err)
	}

	auditIDs := make([]string, 0, len(audits))
	for _, a := range audits {
		auditIDs = append(auditIDs, a.ID)
	}

	logging.Ctx(ctx).Info().Int("products", len(products)).Msg("批量 SEO 审计完成")
	return &dto.AuditProductsResponse{
		Items:    scores,
		Stats:    SummarizeScores(scores),
		AuditIDs: auditIDs,
	}, nil
}

// CatalogScores 全目录评分，统计基于全部商品，status 过滤后再排序分页
func (s *SeoService) CatalogScores(ctx context.Context, userID string, req dto.ListScoresRequest) (*dto.ScoresResponse, error) {
	req.Normalize()

	products, err := s.products.ListAll(ctx, userID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	all := make([]dto.ProductScore, 0, len(products))
	for i := range products {
		all = append(all, ScoreProduct(&products[i]))
	}
	stats := SummarizeScores(all)

	filtered := all
	if req.Status != "" {
		filtered = make([]dto.ProductScore, 0, len(all))
		for _, sc := range all {
			if sc.Status == req.Status {
				filtered = append(filtered, sc)
			}
		}
	}
	SortScores(filtered, req.Sort)

	resp := &dto.ScoresResponse{
		Items: paginateScores(filtered, req.Page, req.PerPage),
		Stats: stats,
	}
	resp.Meta.Page = req.Page
	resp.Meta.PerPage = req.PerPage
	resp.Meta.Total = int64(len(filtered))
	return resp, nil
}

// SortScores 排序，未知方式按分数升序
func SortScores(scores []dto.ProductScore, mode string) {
	switch mode {
	case SortScoreDesc:
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	case SortName:
		sort.SliceStable(scores, func(i, j int) bool {
			return strings.ToLower(scores[i].Name) < strings.ToLower(scores[j].Name)
		})
	default:
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score < scores[j].Score })
	}
}

func paginateScores(scores []dto.ProductScore, page, perPage int) []dto.ProductScore {
	start := (page - 1) * perPage
	if start >= len(scores) {
		return []dto.ProductScore{}
	}
	end := start + perPage
	if end > len(scores) {
		end = len(scores)
	}
	return scores[start:end]
}

// ==================== 审计记录 ====================

// History 商品的历史审计，最新的在前
func (s *SeoService) History(ctx context.Context, userID, productID string, page dto.PageQuery) ([]model.ContentAudit, int64, error) {
	if _, err := s.products.GetByID(ctx, userID, productID); err != nil {
		return nil, 0, apperr.FromStore(err, "Product")
	}
	return s.ListAudits(ctx, userID, dto.ListAuditsRequest{PageQuery: page, TargetType: model.AuditTargetProduct}, productID)
}

// ListAudits 审计记录列表
func (s *SeoService) ListAudits(ctx context.Context, userID string, req dto.ListAuditsRequest, targetID string) ([]model.ContentAudit, int64, error) {
	req.Normalize()
	audits, total, err := s.audits.List(ctx, repository.AuditFilter{
		UserID:     userID,
		TargetType: req.TargetType,
		TargetID:   targetID,
		Page:       req.Page,
		PageSize:   req.PerPage,
	})
	if err != nil {
		return nil, 0, apperr.Store(err)
	}
	return audits, total, nil
}

// CreateAudit 新建审计：product 针对单个商品，catalog 汇总全目录
func (s *SeoService) CreateAudit(ctx context.Context, userID string, req dto.CreateAuditRequest) (*model.ContentAudit, error) {
	var audit *model.ContentAudit

	switch req.TargetType {
	case model.AuditTargetProduct:
		if req.TargetID == "" {
			return nil, apperr.Validation("target_id is required for product audits")
		}
		score, err := s.ScoreOne(ctx, userID, req.TargetID)
		if err != nil {
			return nil, err
		}
		if audit, err = newProductAudit(userID, *score); err != nil {
			return nil, apperr.Internal(err.Error())
		}

	case model.AuditTargetCatalog:
		products, err := s.products.ListAll(ctx, userID)
		if err != nil {
			return nil, apperr.Store(err)
		}
		if audit, err = newCatalogAudit(userID, products); err != nil {
			return nil, apperr.Internal(err.Error())
		}

	default:
		return nil, apperr.Validation("target_type must be product or catalog")
	}

	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, apperr.Store(err)
	}
	return audit, nil
}

// GetAudit 获取审计记录
func (s *SeoService) GetAudit(ctx context.Context, userID, id string) (*model.ContentAudit, error) {
	audit, err := s.audits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "Audit")
	}
	return audit, nil
}

func newProductAudit(userID string, score dto.ProductScore) (*model.ContentAudit, error) {
	issues, err := json.Marshal(score.Issues)
	if err != nil {
		return nil, err
	}
	strengths, err := json.Marshal(score.Strengths)
	if err != nil {
		return nil, err
	}

	audit := &model.ContentAudit{
		TargetType: model.AuditTargetProduct,
		TargetID:   score.ProductID,
		Score:      score.Score,
		Status:     score.Status,
		Issues:     datatypes.JSON(issues),
		Strengths:  datatypes.JSON(strengths),
		Summary: datatypes.JSONMap{
			"name":            score.Name,
			"business_impact": score.BusinessImpact,
		},
	}
	audit.UserID = userID
	return audit, nil
}

// newCatalogAudit 全目录审计：分数取平均，issues 为各规则未满足的商品数
func newCatalogAudit(userID string, products []model.Product) (*model.ContentAudit, error) {
	scores := make([]dto.ProductScore, 0, len(products))
	issueCounts := make(map[string]int)
	for i := range products {
		sc := ScoreProduct(&products[i])
		scores = append(scores, sc)
		for _, issue := range sc.Issues {
			issueCounts[issue.ID]++
		}
	}
	stats := SummarizeScores(scores)

	type ruleIssue struct {
		ID       string `json:"id"`
		Affected int    `json:"affected"`
	}
	issues := make([]ruleIssue, 0, len(issueCounts))
	for _, rule := range seoRules {
		if n := issueCounts[rule.id]; n > 0 {
			issues = append(issues, ruleIssue{ID: rule.id, Affected: n})
		}
	}

	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return nil, err
	}

	avg := int(stats.AvgScore + 0.5)
	audit := &model.ContentAudit{
		TargetType: model.AuditTargetCatalog,
		Score:      avg,
		Status:     SeoStatusForScore(avg),
		Issues:     datatypes.JSON(issuesJSON),
		Strengths:  datatypes.JSON("[]"),
		Summary: datatypes.JSONMap{
			"total":      stats.Total,
			"avg_score":  stats.AvgScore,
			"optimized":  stats.Optimized,
			"needs_work": stats.NeedsWork,
			"critical":   stats.Critical,
		},
	}
	audit.UserID = userID
	return audit, nil
}

// ==================== 文案建议 ====================

// Generate 为商品生成确定性的 SEO 建议并保存
func (s *SeoService) Generate(ctx context.Context, userID string, req dto.GenerateSeoRequest) (*dto.GenerationResponse, error) {
	if len(req.ProductIDs) == 0 {
		return nil, apperr.Validation("product_ids is required")
	}

	products, err := s.products.GetByIDs(ctx, userID, req.ProductIDs)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(products) == 0 {
		return nil, apperr.NotFound("Products")
	}

	suggestions := make([]dto.SeoSuggestion, 0, len(products))
	ids := make([]string, 0, len(products))
	for i := range products {
		suggestions = append(suggestions, SuggestSeo(&products[i]))
		ids = append(ids, products[i].ID)
	}

	raw, err := json.Marshal(suggestions)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	gen := &model.SeoGeneration{
		Status:      model.GenerationStatusCompleted,
		Language:    language,
		ProductIDs:  ids,
		Suggestions: datatypes.JSON(raw),
	}
	gen.UserID = userID

	if err := s.generations.Create(ctx, gen); err != nil {
		return nil, apperr.Store(err)
	}
	return toGenerationResponse(gen, suggestions), nil
}

// GetGeneration 读取生成记录
func (s *SeoService) GetGeneration(ctx context.Context, userID, id string) (*dto.GenerationResponse, error) {
	gen, err := s.generations.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "Generation")
	}
	suggestions, err := decodeSuggestions(gen)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return toGenerationResponse(gen, suggestions), nil
}

// Apply 写回 SEO 字段，经过商品写入白名单，返回重新评分后的商品
func (s *SeoService) Apply(ctx context.Context, userID string, req dto.ApplySeoRequest) (*dto.ApplySeoResponse, error) {
	if req.GenerationID != "" {
		return s.applyGeneration(ctx, userID, req.GenerationID)
	}
	if req.ProductID == "" {
		return nil, apperr.Validation("product_id or generation_id is required")
	}

	product, err := s.productSvc.Update(ctx, userID, req.ProductID, req.Fields)
	if err != nil {
		return nil, err
	}
	return &dto.ApplySeoResponse{
		Applied:  1,
		Products: []dto.ProductScore{ScoreProduct(product)},
	}, nil
}

func (s *SeoService) applyGeneration(ctx context.Context, userID, generationID string) (*dto.ApplySeoResponse, error) {
	gen, err := s.generations.GetByID(ctx, userID, generationID)
	if err != nil {
		return nil, apperr.FromStore(err, "Generation")
	}
	suggestions, err := decodeSuggestions(gen)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}

	resp := &dto.ApplySeoResponse{Products: make([]dto.ProductScore, 0, len(suggestions))}
	for _, sg := range suggestions {
		product, err := s.productSvc.Update(ctx, userID, sg.ProductID, map[string]any{
			"seo_title":       sg.SeoTitle,
			"seo_description": sg.SeoDescription,
		})
		if apperr.IsCode(err, apperr.CodeNotFound) {
			// 生成后商品已被删除
			continue
		}
		if err != nil {
			return nil, err
		}
		resp.Applied++
		resp.Products = append(resp.Products, ScoreProduct(product))
	}

	now := s.now()
	gen.Status = model.GenerationStatusApplied
	gen.AppliedAt = &now
	if err := s.generations.Save(ctx, gen); err != nil {
		return nil, apperr.Store(err)
	}

	logging.Ctx(ctx).Info().
		Str("generation_id", gen.ID).
		Int("applied", resp.Applied).
		Msg("SEO 建议已应用")
	return resp, nil
}

func decodeSuggestions(gen *model.SeoGeneration) ([]dto.SeoSuggestion, error) {
	suggestions := []dto.SeoSuggestion{}
	if len(gen.Suggestions) == 0 {
		return suggestions, nil
	}
	if err := json.Unmarshal(gen.Suggestions, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func toGenerationResponse(gen *model.SeoGeneration, suggestions []dto.SeoSuggestion) *dto.GenerationResponse {
	return &dto.GenerationResponse{
		ID:          gen.ID,
		Status:      gen.Status,
		Language:    gen.Language,
		ProductIDs:  gen.ProductIDs,
		Suggestions: suggestions,
		AppliedAt:   gen.AppliedAt,
		CreatedAt:   gen.CreatedAt,
	}
}
