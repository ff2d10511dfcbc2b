package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"catalog_gateway/internal/metrics"
)

// ==================== 身份与会话 ====================

// Identity 调用方身份，由凭证解析得到，不落库
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Session 缓存的会话
// 命中且未过期时直接使用，不再校验凭证
type Session struct {
	Identity  Identity
	ExpiresAt time.Time
}

// ErrNoSession 凭证缺失或无效，对外统一为 UNAUTHORIZED
var ErrNoSession = errors.New("no valid session")

// IdentityVerifier 凭证校验器（JWT 本地校验或远程身份服务）
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ==================== 会话缓存 ====================

// SessionCache 会话缓存接口，默认进程内实现，可替换为共享存储
type SessionCache interface {
	Get(key string, now time.Time) (*Session, bool)
	Put(key string, session *Session, now time.Time)
	Len() int
}

// memorySessionCache 进程内会话缓存
// 超过 maxEntries 时在写入后扫描一次，只清理已过期条目
type memorySessionCache struct {
	mu         sync.Mutex
	entries    map[string]*Session
	maxEntries int
}

// NewMemorySessionCache 创建进程内会话缓存
func NewMemorySessionCache(maxEntries int) SessionCache {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &memorySessionCache{
		entries:    make(map[string]*Session),
		maxEntries: maxEntries,
	}
}

func (c *memorySessionCache) Get(key string, now time.Time) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.entries[key]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, false
	}
	return s, true
}

func (c *memorySessionCache) Put(key string, session *Session, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = session
	if len(c.entries) <= c.maxEntries {
		return
	}

	// 懒清理
	for k, s := range c.entries {
		if !s.ExpiresAt.After(now) {
			delete(c.entries, k)
		}
	}
}

func (c *memorySessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ==================== 认证器 ====================

// Authenticator 带缓存的认证器
type Authenticator struct {
	cache    SessionCache
	verifier IdentityVerifier
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthenticator 创建认证器，ttl 默认 5 分钟
func NewAuthenticator(cache SessionCache, verifier IdentityVerifier, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Authenticator{
		cache:    cache,
		verifier: verifier,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (a *Authenticator) SetClock(now func() time.Time) {
	a.now = now
}

// Authenticate 解析 Authorization 头并返回会话
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) (*Session, error) {
	token, ok := BearerToken(authHeader)
	if !ok {
		return nil, ErrNoSession
	}

	now := a.now()
	key := credentialKey(token)
	if s, hit := a.cache.Get(key, now); hit {
		metrics.AuthCacheResults.WithLabelValues("hit").Inc()
		return s, nil
	}
	metrics.AuthCacheResults.WithLabelValues("miss").Inc()

	identity, err := a.verifier.Verify(ctx, token)
	if err != nil || identity == nil || identity.UserID == "" {
		return nil, ErrNoSession
	}

	session := &Session{Identity: *identity, ExpiresAt: now.Add(a.ttl)}
	a.cache.Put(key, session, now)
	return session, nil
}

// BearerToken 解析 "Bearer {token}"
func BearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// credentialKey 缓存键只保存凭证摘要
func credentialKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
