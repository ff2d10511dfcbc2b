package utils

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserAgent 网关发出的请求统一 UA
const UserAgent = "catalog-gateway/1.0"

// NewRestyClient 创建带基础地址和超时的 Resty 客户端
// 身份服务校验与二级服务转发共用这一入口
func NewRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent)

	if baseURL != "" {
		client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}

	return client
}
