package controller

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"catalog_gateway/pkg/apperr"
)

// bindJSON 解析 JSON 请求体，失败统一为 VALIDATION_ERROR
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperr.Validation("Invalid request body").WithDetails(map[string]any{"reason": err.Error()})
	}
	return nil
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("Invalid request body").WithDetails(map[string]any{"reason": err.Error()})
	}
	return nil
}

// bindQuery 解析查询参数
func bindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return apperr.Validation("Invalid query parameters").WithDetails(map[string]any{"reason": err.Error()})
	}
	return nil
}
