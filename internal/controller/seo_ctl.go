package controller

import (
	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/service"
)

// SeoController 内容质量评分控制器
type SeoController struct {
	seoService *service.SeoService
}

func NewSeoController(seoService *service.SeoService) *SeoController {
	return &SeoController{seoService: seoService}
}

// ==================== 评分 ====================

// ProductScore 单个商品评分
// @Summary 单个商品 SEO 评分
// @Tags SEO
// @Param id path string true "商品ID"
// @Success 200 {object} dto.ProductScore
// @Router /v1/seo/products/{id}/score [get]
func (ctrl *SeoController) ProductScore(c *gin.Context) {
	score, err := ctrl.seoService.ScoreOne(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, score)
}

// AuditProducts 批量评分
// @Summary 按 ID 批量评分并保存审计记录
// @Tags SEO
// @Param body body dto.AuditProductsRequest true "商品ID列表"
// @Success 200 {object} dto.AuditProductsResponse
// @Router /v1/seo/products/audit [post]
func (ctrl *SeoController) AuditProducts(c *gin.Context) {
	var req dto.AuditProductsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := ctrl.seoService.AuditProducts(c.Request.Context(), middleware.GetUserID(c), req.ProductIDs)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, result)
}

// CatalogScores 全目录评分
// @Summary 全目录评分，支持排序与状态过滤
// @Tags SEO
// @Param sort query string false "score_asc | score_desc | name"
// @Param status query string false "optimized | needs_work | critical"
// @Success 200 {object} dto.ScoresResponse
// @Router /v1/seo/products/scores [get]
func (ctrl *SeoController) CatalogScores(c *gin.Context) {
	var req dto.ListScoresRequest
	if err := bindQuery(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := ctrl.seoService.CatalogScores(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, result)
}

// History 商品审计历史
// @Summary 商品的历史审计记录
// @Tags SEO
// @Param id path string true "商品ID"
// @Success 200 {object} response.ListResp[model.ContentAudit]
// @Router /v1/seo/products/{id}/history [get]
func (ctrl *SeoController) History(c *gin.Context) {
	var page dto.PageQuery
	if err := bindQuery(c, &page); err != nil {
		response.Fail(c, err)
		return
	}

	audits, total, err := ctrl.seoService.History(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		response.Fail(c, err)
		return
	}

	page.Normalize()
	response.List(c, audits, page.Page, page.PerPage, total)
}

// ==================== 审计记录 ====================

// ListAudits 审计记录列表
// @Summary 审计记录列表
// @Tags SEO
// @Param target_type query string false "product | catalog"
// @Success 200 {object} response.ListResp[model.ContentAudit]
// @Router /v1/seo/audits [get]
func (ctrl *SeoController) ListAudits(c *gin.Context) {
	var req dto.ListAuditsRequest
	if err := bindQuery(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	audits, total, err := ctrl.seoService.ListAudits(c.Request.Context(), middleware.GetUserID(c), req, "")
	if err != nil {
		response.Fail(c, err)
		return
	}

	req.Normalize()
	response.List(c, audits, req.Page, req.PerPage, total)
}

// CreateAudit 新建审计
// @Summary 新建商品或全目录审计
// @Tags SEO
// @Param body body dto.CreateAuditRequest true "审计对象"
// @Success 201 {object} model.ContentAudit
// @Router /v1/seo/audits [post]
func (ctrl *SeoController) CreateAudit(c *gin.Context) {
	var req dto.CreateAuditRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	audit, err := ctrl.seoService.CreateAudit(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, audit)
}

// GetAudit 审计详情
// @Summary 审计详情
// @Tags SEO
// @Param id path string true "审计ID"
// @Success 200 {object} model.ContentAudit
// @Router /v1/seo/audits/{id} [get]
func (ctrl *SeoController) GetAudit(c *gin.Context) {
	audit, err := ctrl.seoService.GetAudit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, audit)
}

// ==================== 文案建议 ====================

// Generate 生成 SEO 建议
// @Summary 生成确定性的 SEO 文案建议
// @Tags SEO
// @Param body body dto.GenerateSeoRequest true "商品ID列表"
// @Success 201 {object} dto.GenerationResponse
// @Router /v1/seo/generate [post]
func (ctrl *SeoController) Generate(c *gin.Context) {
	var req dto.GenerateSeoRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	gen, err := ctrl.seoService.Generate(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, gen)
}

// GetGeneration 读取生成记录
// @Summary 读取生成记录
// @Tags SEO
// @Param id path string true "生成记录ID"
// @Success 200 {object} dto.GenerationResponse
// @Router /v1/seo/generate/{id} [get]
func (ctrl *SeoController) GetGeneration(c *gin.Context) {
	gen, err := ctrl.seoService.GetGeneration(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gen)
}

// Apply 应用 SEO 内容
// @Summary 经商品写入白名单写回 SEO 字段
// @Tags SEO
// @Param body body dto.ApplySeoRequest true "应用请求"
// @Success 200 {object} dto.ApplySeoResponse
// @Router /v1/seo/apply [post]
func (ctrl *SeoController) Apply(c *gin.Context) {
	var req dto.ApplySeoRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := ctrl.seoService.Apply(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, result)
}
