package middleware

import (
	"sync"
	"time"
)

// ==================== 固定窗口限流 ====================

// QuotaResult 单次计数结果
type QuotaResult struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter 距离窗口重置的时间
func (r QuotaResult) RetryAfter(now time.Time) time.Duration {
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// QuotaTracker 配额计数接口，默认进程内实现，可替换为共享存储
type QuotaTracker interface {
	Hit(key string, now time.Time) QuotaResult
}

// quotaEntry 单个 key 的窗口状态，创建后原地修改，不删除
type quotaEntry struct {
	count   int
	resetAt time.Time
}

// memoryQuotaTracker 进程内固定窗口计数
// 窗口到期后由下一次请求惰性重置，不做平滑
type memoryQuotaTracker struct {
	mu      sync.Mutex
	entries map[string]*quotaEntry
	max     int
	window  time.Duration
}

// NewMemoryQuotaTracker 创建计数器，默认 60 次 / 60 秒
func NewMemoryQuotaTracker(max int, window time.Duration) QuotaTracker {
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	return &memoryQuotaTracker{
		entries: make(map[string]*quotaEntry),
		max:     max,
		window:  window,
	}
}

// Hit 计数一次，count <= max 时放行
func (t *memoryQuotaTracker) Hit(key string, now time.Time) QuotaResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		entry = &quotaEntry{}
		t.entries[key] = entry
	}

	if entry.resetAt.IsZero() || !now.Before(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(t.window)
	}
	entry.count++

	remaining := t.max - entry.count
	if remaining < 0 {
		remaining = 0
	}

	return QuotaResult{
		Allowed:   entry.count <= t.max,
		Count:     entry.count,
		Limit:     t.max,
		Remaining: remaining,
		ResetAt:   entry.resetAt,
	}
}

// ==================== Key 生成 ====================

// QuotaKey 身份 + 接口维度，接口为 "METHOD pattern"
func QuotaKey(userID, endpoint string) string {
	return userID + "|" + endpoint
}
