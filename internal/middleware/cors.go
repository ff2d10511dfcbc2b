package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSHeaders 宽松跨域头，本地响应与转发响应都会带上
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":   "*",
	"Access-Control-Allow-Methods":  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	"Access-Control-Allow-Headers":  "authorization, x-client-info, apikey, content-type, idempotency-key, x-request-id",
	"Access-Control-Expose-Headers": "x-request-id, x-ratelimit-limit, x-ratelimit-remaining, x-ratelimit-reset, retry-after",
}

// CORS 写入跨域头，预检请求直接返回 204
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range CORSHeaders {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
