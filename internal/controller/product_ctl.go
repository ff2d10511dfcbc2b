package controller

import (
	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 分页查询商品
// @Tags Product
// @Param page query int false "页码" default(1)
// @Param per_page query int false "每页数量" default(20)
// @Param status query string false "状态"
// @Param q query string false "标题或 SKU 搜索"
// @Param category query string false "分类"
// @Param low_stock query bool false "只看低库存"
// @Success 200 {object} response.ListResp[model.Product]
// @Router /v1/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := bindQuery(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	req.Normalize()
	response.List(c, products, req.Page, req.PerPage, total)
}

// Get 商品详情
// @Summary 获取单个商品
// @Tags Product
// @Param id path string true "商品ID"
// @Success 200 {object} model.Product
// @Router /v1/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	product, err := ctrl.productService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, product)
}

// Stats 商品统计
// @Summary 商品汇总统计
// @Tags Product
// @Success 200 {object} dto.ProductStatsResponse
// @Router /v1/products/stats [get]
func (ctrl *ProductController) Stats(c *gin.Context) {
	stats, err := ctrl.productService.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, stats)
}

// ==================== 写入接口 ====================

// Create 创建商品
// @Summary 创建商品
// @Tags Product
// @Accept json
// @Param body body map[string]interface{} true "商品字段"
// @Success 201 {object} model.Product
// @Router /v1/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var input map[string]any
	if err := bindJSON(c, &input); err != nil {
		response.Fail(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), middleware.GetUserID(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, product)
}

// Update 部分更新商品（PUT 与 PATCH 行为一致）
// @Summary 更新商品
// @Tags Product
// @Accept json
// @Param id path string true "商品ID"
// @Param body body map[string]interface{} true "要更新的字段"
// @Success 200 {object} model.Product
// @Router /v1/products/{id} [patch]
func (ctrl *ProductController) Update(c *gin.Context) {
	var input map[string]any
	if err := bindJSON(c, &input); err != nil {
		response.Fail(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, product)
}

// BulkUpdate 批量更新
// @Summary 批量更新商品
// @Tags Product
// @Accept json
// @Param body body dto.BulkUpdateProductsRequest true "批量更新"
// @Success 200 {object} dto.BulkUpdateProductsResponse
// @Router /v1/products/bulk [patch]
func (ctrl *ProductController) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateProductsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	updated, err := ctrl.productService.BulkUpdate(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, dto.BulkUpdateProductsResponse{Updated: updated})
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product
// @Param id path string true "商品ID"
// @Success 200 {object} dto.DeleteProductResponse
// @Router /v1/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.productService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, dto.DeleteProductResponse{Success: true, ID: id})
}
