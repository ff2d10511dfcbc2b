package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 限流响应头
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// WriteQuotaHeaders 写入配额信息，被拒绝时附带 Retry-After（秒，向上取整）
func WriteQuotaHeaders(c *gin.Context, result QuotaResult, now time.Time) {
	c.Header(HeaderRateLimitLimit, strconv.Itoa(result.Limit))
	c.Header(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
	c.Header(HeaderRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))

	if !result.Allowed {
		seconds := int(math.Ceil(result.RetryAfter(now).Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header(HeaderRetryAfter, strconv.Itoa(seconds))
	}
}
