package controller

import (
	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/service"
)

type IntegrationController struct {
	integrationService *service.IntegrationService
}

func NewIntegrationController(integrationService *service.IntegrationService) *IntegrationController {
	return &IntegrationController{integrationService: integrationService}
}

// List 集成概要
// @Summary 已连接的销售平台（只读）
// @Tags Integration
// @Success 200 {object} response.ListResp[dto.IntegrationResponse]
// @Router /v1/integrations [get]
func (ctrl *IntegrationController) List(c *gin.Context) {
	var page dto.PageQuery
	if err := bindQuery(c, &page); err != nil {
		response.Fail(c, err)
		return
	}

	items, total, err := ctrl.integrationService.List(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}

	page.Normalize()
	response.List(c, items, page.Page, page.PerPage, total)
}
