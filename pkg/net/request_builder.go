package net

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes 转发请求体默认上限 10MB
const DefaultMaxBodyBytes int64 = 10 << 20

// ErrBodyTooLarge 请求体超过上限
var ErrBodyTooLarge = errors.New("request body too large")

// 逐跳头，不向上游或调用方透传
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Content-Length":      {},
	"Host":                {},
}

func isHopHeader(key string) bool {
	_, ok := hopHeaders[http.CanonicalHeaderKey(key)]
	return ok
}

func filterHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if isHopHeader(k) {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

// BuildUpstreamRequest 从入站请求构建转发请求
// 保留方法、查询串、请求体和非逐跳头；path 为相对上游的路径
// 请求体超过 maxBody 字节返回 ErrBodyTooLarge，maxBody <= 0 时使用默认上限
func BuildUpstreamRequest(r *http.Request, path string, maxBody int64) (*UpstreamRequest, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, ErrBodyTooLarge
			}
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = b
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &UpstreamRequest{
		Method:   r.Method,
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Header:   filterHeader(r.Header),
		Body:     body,
	}, nil
}
