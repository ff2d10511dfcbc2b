package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// ==================== Mock 实现 ====================

type mockVerifier struct {
	mu       sync.Mutex
	calls    int
	verifyFn func(ctx context.Context, token string) (*Identity, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.verifyFn != nil {
		return m.verifyFn(ctx, token)
	}
	return &Identity{UserID: "user-" + token, Email: token + "@example.com"}, nil
}

func (m *mockVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestAuthenticator(verifier IdentityVerifier, maxEntries int) (*Authenticator, *fakeClock, SessionCache) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	cache := NewMemorySessionCache(maxEntries)
	auth := NewAuthenticator(cache, verifier, 5*time.Minute)
	auth.SetClock(clock.Now)
	return auth, clock, cache
}

// ==================== 测试用例 ====================

func TestAuthenticator_CacheHitSkipsVerification(t *testing.T) {
	verifier := &mockVerifier{}
	auth, clock, _ := newTestAuthenticator(verifier, 200)
	ctx := context.Background()

	s1, err := auth.Authenticate(ctx, "Bearer abc")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	clock.Advance(4 * time.Minute)
	s2, err := auth.Authenticate(ctx, "Bearer abc")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if verifier.Calls() != 1 {
		t.Errorf("verifier calls = %d, want 1", verifier.Calls())
	}
	if s1 != s2 {
		t.Error("缓存命中应返回同一会话")
	}
	if s2.Identity.UserID != "user-abc" {
		t.Errorf("UserID = %s, want user-abc", s2.Identity.UserID)
	}
}

func TestAuthenticator_ExpiredEntryReverifies(t *testing.T) {
	verifier := &mockVerifier{}
	auth, clock, _ := newTestAuthenticator(verifier, 200)
	ctx := context.Background()

	if _, err := auth.Authenticate(ctx, "Bearer abc"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	clock.Advance(5 * time.Minute)
	if _, err := auth.Authenticate(ctx, "Bearer abc"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if verifier.Calls() != 2 {
		t.Errorf("verifier calls = %d, want 2", verifier.Calls())
	}
}

func TestAuthenticator_InvalidCredentials(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*Identity, error) {
			return nil, errors.New("expired")
		},
	}
	auth, _, cache := newTestAuthenticator(verifier, 200)
	ctx := context.Background()

	headers := []string{"", "Bearer", "Bearer   ", "Basic abc", "abc", "Bearer bad"}
	for _, h := range headers {
		if _, err := auth.Authenticate(ctx, h); !errors.Is(err, ErrNoSession) {
			t.Errorf("Authenticate(%q) err = %v, want ErrNoSession", h, err)
		}
	}

	if cache.Len() != 0 {
		t.Errorf("失败的校验不应写入缓存, len = %d", cache.Len())
	}
	if verifier.Calls() != 1 {
		t.Errorf("只有格式正确的凭证才调用校验器, calls = %d", verifier.Calls())
	}
}

func TestAuthenticator_EmptyIdentityRejected(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*Identity, error) {
			return &Identity{}, nil
		},
	}
	auth, _, _ := newTestAuthenticator(verifier, 200)

	if _, err := auth.Authenticate(context.Background(), "Bearer abc"); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestMemorySessionCache_SweepOnlyAboveThreshold(t *testing.T) {
	verifier := &mockVerifier{}
	auth, clock, cache := newTestAuthenticator(verifier, 200)
	ctx := context.Background()

	// 200 条旧会话
	for i := 0; i < 200; i++ {
		if _, err := auth.Authenticate(ctx, fmt.Sprintf("Bearer old-%d", i)); err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
	}
	if cache.Len() != 200 {
		t.Fatalf("len = %d, want 200", cache.Len())
	}

	// 全部过期，但未超过阈值前不清理
	clock.Advance(6 * time.Minute)
	if cache.Len() != 200 {
		t.Errorf("未超过阈值不应清理, len = %d", cache.Len())
	}

	// 第 201 条触发清理，只剩下未过期的这一条
	if _, err := auth.Authenticate(ctx, "Bearer fresh"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("清理后 len = %d, want 1", cache.Len())
	}
}

func TestMemorySessionCache_SweepKeepsLiveEntries(t *testing.T) {
	cache := NewMemorySessionCache(2)
	now := time.Now()

	cache.Put("a", &Session{ExpiresAt: now.Add(time.Minute)}, now)
	cache.Put("b", &Session{ExpiresAt: now.Add(time.Minute)}, now)
	cache.Put("c", &Session{ExpiresAt: now.Add(time.Minute)}, now)

	// 都未过期，超过上限也不淘汰
	if cache.Len() != 3 {
		t.Errorf("len = %d, want 3", cache.Len())
	}
	if _, ok := cache.Get("a", now); !ok {
		t.Error("未过期的会话不应被清理")
	}
}

func TestAuthenticator_CacheKeyIsHashed(t *testing.T) {
	key := credentialKey("secret-token")
	if key == "secret-token" || len(key) != 64 {
		t.Errorf("credentialKey() = %q, want sha256 hex", key)
	}
}

func TestAuthenticator_Concurrent(t *testing.T) {
	verifier := &mockVerifier{}
	auth, _, _ := newTestAuthenticator(verifier, 200)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := auth.Authenticate(ctx, fmt.Sprintf("Bearer t-%d", i%5)); err != nil {
				t.Errorf("Authenticate() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
