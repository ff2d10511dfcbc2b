package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog_gateway/internal/controller"
	"catalog_gateway/internal/middleware"
)

// Controllers 本地路由用到的控制器
type Controllers struct {
	Health      *controller.HealthController
	Product     *controller.ProductController
	Job         *controller.JobController
	Seo         *controller.SeoController
	Integration *controller.IntegrationController
}

// BuildRouteTable 注册所有本地路由与转发前缀
func BuildRouteTable(ctl Controllers, proxyPrefixes []string) *RouteTable {
	t := NewRouteTable()

	// 健康检查
	t.Public(http.MethodGet, "/health", ctl.Health.Health)

	// 商品
	t.Local(http.MethodGet, "/products", ctl.Product.List)
	t.Local(http.MethodPost, "/products", ctl.Product.Create)
	t.Local(http.MethodGet, "/products/stats", ctl.Product.Stats)
	t.Local(http.MethodPatch, "/products/bulk", ctl.Product.BulkUpdate)
	t.Local(http.MethodPost, "/products/bulk", ctl.Product.BulkUpdate)
	t.Local(http.MethodGet, "/products/:id", ctl.Product.Get)
	t.Local(http.MethodPut, "/products/:id", ctl.Product.Update)
	t.Local(http.MethodPatch, "/products/:id", ctl.Product.Update)
	t.Local(http.MethodDelete, "/products/:id", ctl.Product.Delete)

	// 导入任务，/imports/jobs 为历史别名
	for _, base := range []string{"/import/jobs", "/imports/jobs"} {
		t.Local(http.MethodGet, base, ctl.Job.List)
		t.Local(http.MethodPost, base, ctl.Job.Create)
		t.Local(http.MethodPost, base+"/enrich", ctl.Job.Enrich)
		t.Local(http.MethodGet, base+"/:id", ctl.Job.Get)
		t.Local(http.MethodGet, base+"/:id/items", ctl.Job.Items)
		t.Local(http.MethodPost, base+"/:id/:action", ctl.Job.Action)
	}

	// 集成
	t.Local(http.MethodGet, "/integrations", ctl.Integration.List)

	// 内容质量
	t.Local(http.MethodGet, "/seo/audits", ctl.Seo.ListAudits)
	t.Local(http.MethodPost, "/seo/audits", ctl.Seo.CreateAudit)
	t.Local(http.MethodGet, "/seo/audits/:id", ctl.Seo.GetAudit)
	t.Local(http.MethodGet, "/seo/products/scores", ctl.Seo.CatalogScores)
	t.Local(http.MethodPost, "/seo/products/audit", ctl.Seo.AuditProducts)
	t.Local(http.MethodGet, "/seo/products/:id/score", ctl.Seo.ProductScore)
	t.Local(http.MethodGet, "/seo/products/:id/history", ctl.Seo.History)
	t.Local(http.MethodPost, "/seo/generate", ctl.Seo.Generate)
	t.Local(http.MethodGet, "/seo/generate/:id", ctl.Seo.GetGeneration)
	t.Local(http.MethodPost, "/seo/apply", ctl.Seo.Apply)

	// 二级服务
	t.Proxy(proxyPrefixes...)

	return t
}

// SetupRouter 创建 gin 引擎
// 基础前缀下所有请求交给 Dispatcher，/metrics 在前缀外且不需要认证
func SetupRouter(basePath string, dispatcher *Dispatcher) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.CORS(),
		middleware.AccessLog(),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(basePath)
	api.Any("/*path", dispatcher.Handle)

	return r
}
