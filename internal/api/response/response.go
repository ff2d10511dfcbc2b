// Package response 统一响应信封
//
// 成功：直接返回资源；集合返回 {items, meta:{page, per_page, total}}
// 失败：{error:{code, message, details?}}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// Meta 分页信息
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// ListResp 集合响应
type ListResp[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// ErrorBody 错误内容
type ErrorBody struct {
	Code    apperr.Code    `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResp 错误响应
type ErrorResp struct {
	Error ErrorBody `json:"error"`
}

// OK 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// List 集合响应，items 为 nil 时输出空数组
func List[T any](c *gin.Context, items []T, page, perPage int, total int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListResp[T]{
		Items: items,
		Meta:  Meta{Page: page, PerPage: perPage, Total: total},
	})
}

// Fail 按错误码输出错误并中止后续处理
func Fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()

	event := logging.Ctx(c.Request.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(c.Request.Context()).Error()
	}
	event.Err(appErr.Cause).
		Str("code", string(appErr.Code)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg(appErr.Message)

	c.AbortWithStatusJSON(status, ErrorResp{
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
