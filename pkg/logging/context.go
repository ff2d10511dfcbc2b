package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// GenerateRequestID 生成请求 ID
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID 注入请求 ID
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext 获取请求 ID，不存在时返回空串
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithUserID 注入调用方 ID，仅用于日志字段
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Ctx 返回带 request_id / user_id 字段的 logger
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger().With().Logger()
	if ctx == nil {
		return &l
	}
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	if uid, ok := ctx.Value(userIDKey).(string); ok && uid != "" {
		l = l.With().Str("user_id", uid).Logger()
	}
	return &l
}
