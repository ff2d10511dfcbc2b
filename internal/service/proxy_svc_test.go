package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_gateway/pkg/apperr"
	"catalog_gateway/pkg/net"
)

// ==================== Mock 实现 ====================

type mockDispatcher struct {
	sendFn func(ctx context.Context, req *net.UpstreamRequest) (*net.UpstreamResponse, error)
}

func (m *mockDispatcher) Send(ctx context.Context, req *net.UpstreamRequest) (*net.UpstreamResponse, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, req)
	}
	return &net.UpstreamResponse{StatusCode: http.StatusOK, Header: http.Header{}}, nil
}

func TestProxyService_Forward(t *testing.T) {
	var captured *net.UpstreamRequest
	svc := NewProxyService(&mockDispatcher{
		sendFn: func(ctx context.Context, req *net.UpstreamRequest) (*net.UpstreamResponse, error) {
			captured = req
			return &net.UpstreamResponse{StatusCode: http.StatusAccepted, Body: []byte(`{"ok":true}`)}, nil
		},
	}, 0)

	r := httptest.NewRequest(http.MethodPost, "/v1/crm/leads?source=web", strings.NewReader(`{"name":"x"}`))
	r.Header.Set("Authorization", "Bearer t")

	resp, err := svc.Forward(context.Background(), r, "crm", "/crm/leads", "req-9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/crm/leads", captured.Path)
	assert.Equal(t, "source=web", captured.RawQuery)
	assert.Equal(t, "req-9", captured.Header.Get("X-Request-ID"))
	assert.Equal(t, "Bearer t", captured.Header.Get("Authorization"))
	assert.Equal(t, `{"name":"x"}`, string(captured.Body))
}

func TestProxyService_ForwardErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"熔断打开", gobreaker.ErrOpenState},
		{"未配置上游", net.ErrNoUpstream},
		{"网络错误", errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProxyService(&mockDispatcher{
				sendFn: func(ctx context.Context, req *net.UpstreamRequest) (*net.UpstreamResponse, error) {
					return nil, tt.err
				},
			}, 0)
			r := httptest.NewRequest(http.MethodGet, "/v1/ai/models", nil)

			_, err := svc.Forward(context.Background(), r, "ai", "/ai/models", "")
			assert.True(t, apperr.IsCode(err, apperr.CodeProxy))
			assert.Equal(t, http.StatusBadGateway, apperr.From(err).Status())
		})
	}
}

func TestProxyService_ForwardBodyTooLarge(t *testing.T) {
	sent := false
	svc := NewProxyService(&mockDispatcher{
		sendFn: func(ctx context.Context, req *net.UpstreamRequest) (*net.UpstreamResponse, error) {
			sent = true
			return &net.UpstreamResponse{StatusCode: http.StatusOK}, nil
		},
	}, 8)

	r := httptest.NewRequest(http.MethodPost, "/v1/crm/leads", strings.NewReader(`{"name":"too long"}`))
	_, err := svc.Forward(context.Background(), r, "crm", "/crm/leads", "")

	require.True(t, apperr.IsCode(err, apperr.CodeValidation), "err = %v", err)
	assert.Equal(t, int64(8), apperr.From(err).Details["max_bytes"])
	assert.False(t, sent)
}

func TestBreakerStateValue(t *testing.T) {
	assert.Equal(t, 0.0, breakerStateValue(gobreaker.StateClosed))
	assert.Equal(t, 1.0, breakerStateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, breakerStateValue(gobreaker.StateOpen))
	ObserveBreakerState("test", gobreaker.StateClosed, gobreaker.StateOpen)
}
