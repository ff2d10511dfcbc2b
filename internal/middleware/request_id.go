package middleware

import (
	"github.com/gin-gonic/gin"

	"catalog_gateway/pkg/logging"
)

// HeaderRequestID 关联 ID 请求/响应头
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID gin Context 中的关联 ID
const ContextKeyRequestID = "request_id"

// maxRequestIDLen 超长的外部 ID 直接丢弃重新生成
const maxRequestIDLen = 128

// RequestID 沿用调用方传入的 X-Request-ID，没有则生成，并回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = logging.GenerateRequestID()
		}

		c.Set(ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)

		c.Next()
	}
}

// GetRequestID 获取关联 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
