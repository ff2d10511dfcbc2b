package router

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteKind 路由类型
type RouteKind int

const (
	// RouteLocal 本地处理
	RouteLocal RouteKind = iota
	// RouteProxy 转发到二级服务
	RouteProxy
)

func (k RouteKind) String() string {
	if k == RouteProxy {
		return "proxy"
	}
	return "local"
}

// Route 路由表条目
// Local 条目携带 Handler；Proxy 条目只记录一级前缀
type Route struct {
	Kind    RouteKind
	Method  string
	Pattern string
	Public  bool
	Handler gin.HandlerFunc
	Prefix  string

	segments []string
}

// Match 解析结果
type Match struct {
	Route  *Route
	Params gin.Params
}

// Endpoint 限流与指标使用的接口标识 "METHOD pattern"
func (m *Match) Endpoint() string {
	if m.Route.Kind == RouteProxy {
		return "* /" + m.Route.Prefix + "/*"
	}
	return m.Route.Method + " " + m.Route.Pattern
}

// ==================== 路由表 ====================

// RouteTable 启动时构建的静态路由表，构建完成后只读
type RouteTable struct {
	locals  []*Route
	proxies map[string]*Route
}

func NewRouteTable() *RouteTable {
	return &RouteTable{proxies: make(map[string]*Route)}
}

// Local 注册需要认证的本地路由
func (t *RouteTable) Local(method, pattern string, handler gin.HandlerFunc) {
	t.add(method, pattern, handler, false)
}

// Public 注册免认证、免限流的本地路由
func (t *RouteTable) Public(method, pattern string, handler gin.HandlerFunc) {
	t.add(method, pattern, handler, true)
}

func (t *RouteTable) add(method, pattern string, handler gin.HandlerFunc, public bool) {
	t.locals = append(t.locals, &Route{
		Kind:     RouteLocal,
		Method:   method,
		Pattern:  pattern,
		Public:   public,
		Handler:  handler,
		segments: splitPath(pattern),
	})
}

// Proxy 注册转发前缀
func (t *RouteTable) Proxy(prefixes ...string) {
	for _, p := range prefixes {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		t.proxies[p] = &Route{Kind: RouteProxy, Pattern: "/" + p + "/*", Prefix: p}
	}
}

// Resolve 按方法与路径查找路由，path 不含基础前缀
// 本地路由优先；多个本地路由同时匹配时取字面量段最多的
func (t *RouteTable) Resolve(method, path string) *Match {
	segs := splitPath(path)

	var best *Match
	bestLiterals := -1
	for _, r := range t.locals {
		if r.Method != method {
			continue
		}
		params, literals, ok := matchSegments(r.segments, segs)
		if !ok || literals <= bestLiterals {
			continue
		}
		best = &Match{Route: r, Params: params}
		bestLiterals = literals
	}
	if best != nil {
		return best
	}

	if len(segs) > 0 {
		if r, ok := t.proxies[segs[0]]; ok {
			return &Match{Route: r}
		}
	}
	return nil
}

// Routes 本地路由快照
func (t *RouteTable) Routes() []*Route {
	out := make([]*Route, len(t.locals))
	copy(out, t.locals)
	return out
}

// ==================== 匹配 ====================

func matchSegments(pattern, segs []string) (gin.Params, int, bool) {
	if len(pattern) != len(segs) {
		return nil, 0, false
	}

	var params gin.Params
	literals := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			params = append(params, gin.Param{Key: p[1:], Value: segs[i]})
			continue
		}
		if p != segs[i] {
			return nil, 0, false
		}
		literals++
	}
	return params, literals, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
