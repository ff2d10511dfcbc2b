package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/response"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// Recovery 捕获 panic，统一输出 INTERNAL_ERROR
// 响应中带 panic 信息，便于调用方排查
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Msg("请求处理 panic")

				response.Fail(c, apperr.Internal(fmt.Sprint(r)))
			}
		}()

		c.Next()
	}
}
