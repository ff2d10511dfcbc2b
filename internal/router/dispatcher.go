package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/metrics"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/service"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
)

// Dispatcher 网关请求分发
// 顺序：公开路由 -> 认证 -> 转发 | 限流 -> 本地处理
type Dispatcher struct {
	table         *RouteTable
	authenticator *middleware.Authenticator
	quota         middleware.QuotaTracker
	proxy         *service.ProxyService
	now           func() time.Time
}

func NewDispatcher(
	table *RouteTable,
	authenticator *middleware.Authenticator,
	quota middleware.QuotaTracker,
	proxy *service.ProxyService,
) *Dispatcher {
	return &Dispatcher{
		table:         table,
		authenticator: authenticator,
		quota:         quota,
		proxy:         proxy,
		now:           time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Handle 挂在基础前缀下的通配路由，path 参数为去掉前缀后的路径
func (d *Dispatcher) Handle(c *gin.Context) {
	path := c.Param("path")
	method := c.Request.Method
	match := d.table.Resolve(method, path)

	if match != nil && match.Route.Public {
		d.serveLocal(c, match)
		return
	}

	session, err := d.authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		response.Fail(c, apperr.Unauthorized())
		return
	}
	identity := session.Identity
	middleware.SetIdentity(c, identity)

	ctx := middleware.WithOwner(c.Request.Context(), identity.UserID)
	ctx = logging.ContextWithUserID(ctx, identity.UserID)
	c.Request = c.Request.WithContext(ctx)

	if match == nil {
		response.Fail(c, apperr.Newf(apperr.CodeNotFound, "Route not found: %s %s", method, path))
		return
	}

	if match.Route.Kind == RouteProxy {
		d.forward(c, match, path)
		return
	}

	endpoint := match.Endpoint()
	now := d.now()
	result := d.quota.Hit(middleware.QuotaKey(identity.UserID, endpoint), now)
	middleware.WriteQuotaHeaders(c, result, now)
	if !result.Allowed {
		metrics.RateLimitRejections.WithLabelValues(endpoint).Inc()
		response.Fail(c, apperr.RateLimited().WithDetails(map[string]any{
			"limit":    result.Limit,
			"reset_at": result.ResetAt.UTC().Format(time.RFC3339),
		}))
		return
	}

	d.serveLocal(c, match)
}

func (d *Dispatcher) serveLocal(c *gin.Context, match *Match) {
	c.Set(middleware.ContextKeyRoute, match.Route.Pattern)
	c.Params = append(c.Params[:0:0], match.Params...)
	match.Route.Handler(c)
}

// forward 转发并原样写回上游状态码与响应体，合并跨域头
func (d *Dispatcher) forward(c *gin.Context, match *Match, path string) {
	c.Set(middleware.ContextKeyRoute, match.Route.Pattern)

	resp, err := d.proxy.Forward(
		c.Request.Context(),
		c.Request,
		match.Route.Prefix,
		path,
		middleware.GetRequestID(c),
	)
	if err != nil {
		response.Fail(c, err)
		return
	}

	for k, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(k, v)
		}
	}
	for k, v := range middleware.CORSHeaders {
		c.Header(k, v)
	}
	if id := middleware.GetRequestID(c); id != "" {
		c.Header(middleware.HeaderRequestID, id)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		c.Writer.WriteHeaderNow()
		return
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}
