package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/metrics"
	"catalog_gateway/pkg/logging"
)

// ContextKeyRoute 匹配到的路由模板，由分发器写入，用于指标标签
const ContextKeyRoute = "route_pattern"

// AccessLog 访问日志与 HTTP 指标
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.GetString(ContextKeyRoute)
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		logging.Ctx(c.Request.Context()).Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", latency).
			Str("user_id", GetUserID(c)).
			Msg("request")
	}
}
