// Package metrics 网关 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// 认证缓存
	AuthCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_cache_results_total",
			Help: "Session cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// 限流
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limit_rejections_total",
			Help: "Requests rejected by the fixed-window limiter",
		},
		[]string{"route"},
	)

	// 转发
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_proxy_requests_total",
			Help: "Requests forwarded to the secondary service",
		},
		[]string{"prefix", "result"}, // success, upstream_error, rejected, failure
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// 任务
	JobsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_jobs_by_status",
			Help: "Number of jobs per status, sampled periodically",
		},
		[]string{"status"},
	)

	JobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_job_transitions_total",
			Help: "Job state transitions performed through the API",
		},
		[]string{"action"}, // create, retry, cancel, resume, replay, enrich
	)
)
