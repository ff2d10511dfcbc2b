package middleware

import (
	"context"
	"reflect"

	"gorm.io/gorm"
)

// ==================== 归属上下文 ====================

type ownerContextKey struct{}

// WithOwner 注入当前调用方 ID 到 context，供 GORM 回调使用
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, userID)
}

// GetOwnerID 从 context 获取调用方 ID
func GetOwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(ownerContextKey{}).(string); ok {
		return id
	}
	return ""
}

// ==================== GORM 回调 ====================

// RegisterOwnerCallbacks 注册 GORM 回调
// Create 时 UserID 为空则用 context 中的调用方填充
func RegisterOwnerCallbacks(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register("owner:create", func(tx *gorm.DB) {
		if tx.Statement.Context == nil {
			return
		}

		userID := GetOwnerID(tx.Statement.Context)
		if userID == "" {
			return
		}

		setOwnerField(tx, "UserID", userID)
	})
}

// setOwnerField 只填充零值，不覆盖显式写入
func setOwnerField(tx *gorm.DB, fieldName string, value string) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		if _, isZero := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue); isZero {
			_ = field.Set(tx.Statement.Context, tx.Statement.ReflectValue, value)
		}
	case reflect.Slice:
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			rv := tx.Statement.ReflectValue.Index(i)
			if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
				_ = field.Set(tx.Statement.Context, rv, value)
			}
		}
	}
}
