package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"

	"catalog_gateway/pkg/logging"
	"catalog_gateway/pkg/utils"
)

// ErrNoUpstream 未配置二级服务地址
var ErrNoUpstream = errors.New("upstream target not configured")

// errUpstreamStatus 上游 5xx，计入熔断失败，但响应仍原样返回
var errUpstreamStatus = errors.New("upstream returned server error")

// UpstreamRequest 待转发的请求
type UpstreamRequest struct {
	Method   string
	Path     string // 以 / 开头，相对于上游基础地址
	RawQuery string
	Header   http.Header
	Body     []byte
}

// UpstreamResponse 上游响应
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Dispatcher 网络调度器
type Dispatcher interface {
	// Send 转发请求，熔断打开或网络错误时返回 error
	// 上游返回的任何状态码（包括 5xx）都作为响应返回
	Send(ctx context.Context, req *UpstreamRequest) (*UpstreamResponse, error)
}

// Options 调度器配置
type Options struct {
	Name          string
	BaseURL       string
	Timeout       time.Duration
	MaxFailures   uint32        // 连续失败多少次打开熔断
	OpenTimeout   time.Duration // 打开后多久进入半开
	OnStateChange func(name string, from, to gobreaker.State)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	client  *resty.Client
	cb      *gobreaker.CircuitBreaker[*UpstreamResponse]
	baseURL string
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher(opts Options) Dispatcher {
	if opts.Name == "" {
		opts.Name = "upstream"
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*UpstreamResponse](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			if opts.OnStateChange != nil {
				opts.OnStateChange(name, from, to)
			}
		},
	})

	return &httpDispatcher{
		client:  utils.NewRestyClient(opts.BaseURL, opts.Timeout),
		cb:      cb,
		baseURL: opts.BaseURL,
	}
}

// Send 发送请求
func (d *httpDispatcher) Send(ctx context.Context, req *UpstreamRequest) (*UpstreamResponse, error) {
	if d.baseURL == "" {
		return nil, ErrNoUpstream
	}

	resp, err := d.cb.Execute(func() (*UpstreamResponse, error) {
		return d.do(ctx, req)
	})
	if errors.Is(err, errUpstreamStatus) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *httpDispatcher) do(ctx context.Context, req *UpstreamRequest) (*UpstreamResponse, error) {
	url := req.Path
	if req.RawQuery != "" {
		url += "?" + req.RawQuery
	}

	r := d.client.R().SetContext(ctx)
	for k, values := range req.Header {
		if isHopHeader(k) {
			continue
		}
		r.SetHeaderMultiValues(map[string][]string{k: values})
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, url)
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", req.Method, req.Path, err)
	}

	out := &UpstreamResponse{
		StatusCode: resp.StatusCode(),
		Header:     filterHeader(resp.Header()),
		Body:       resp.Body(),
	}
	if out.StatusCode >= http.StatusInternalServerError {
		return out, errUpstreamStatus
	}
	return out, nil
}

// State 当前熔断状态
func (d *httpDispatcher) State() gobreaker.State {
	return d.cb.State()
}
