package service

import (
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"catalog_gateway/internal/metrics"
	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/logging"
	"catalog_gateway/pkg/net"
)

// ProxyService 将二级服务前缀下的请求整体转发
type ProxyService struct {
	dispatcher   net.Dispatcher
	maxBodyBytes int64
}

// NewProxyService maxBodyBytes <= 0 时使用 net.DefaultMaxBodyBytes
func NewProxyService(dispatcher net.Dispatcher, maxBodyBytes int64) *ProxyService {
	return &ProxyService{dispatcher: dispatcher, maxBodyBytes: maxBodyBytes}
}

// Forward 转发请求，保留方法、请求体与请求头，并注入关联 ID
// path 为去掉网关基础前缀后的路径，prefix 仅用于指标标签
func (s *ProxyService) Forward(ctx context.Context, r *http.Request, prefix, path, requestID string) (*net.UpstreamResponse, error) {
	req, err := net.BuildUpstreamRequest(r, path, s.maxBodyBytes)
	if err != nil {
		metrics.ProxyRequests.WithLabelValues(prefix, "failure").Inc()
		if errors.Is(err, net.ErrBodyTooLarge) {
			limit := s.maxBodyBytes
			if limit <= 0 {
				limit = net.DefaultMaxBodyBytes
			}
			return nil, apperr.Validation("Request body too large").
				WithDetails(map[string]any{"max_bytes": limit})
		}
		return nil, apperr.Validation("Unable to read request body")
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := s.dispatcher.Send(ctx, req)
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.ProxyRequests.WithLabelValues(prefix, result).Inc()
		logging.Ctx(ctx).Error().Err(err).
			Str("prefix", prefix).
			Str("path", path).
			Msg("转发二级服务失败")
		return nil, apperr.Proxy(err)
	}

	result := "success"
	if resp.StatusCode >= http.StatusInternalServerError {
		result = "upstream_error"
	}
	metrics.ProxyRequests.WithLabelValues(prefix, result).Inc()
	return resp, nil
}

// ObserveBreakerState 熔断状态变化写入指标
func ObserveBreakerState(name string, _, to gobreaker.State) {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
