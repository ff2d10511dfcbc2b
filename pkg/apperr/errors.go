// Package apperr 网关统一错误分类
// 每个错误携带一个稳定的 Code，由 Code 决定 HTTP 状态码
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Code 错误码
type Code string

const (
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInvalidState  Code = "INVALID_STATE"
	CodeInvalidAction Code = "INVALID_ACTION"
	CodeStore         Code = "STORE_ERROR"
	CodeProxy         Code = "PROXY_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeRateLimited:   http.StatusTooManyRequests,
	CodeValidation:    http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeInvalidState:  http.StatusConflict,
	CodeInvalidAction: http.StatusBadRequest,
	CodeStore:         http.StatusInternalServerError,
	CodeProxy:         http.StatusBadGateway,
	CodeInternal:      http.StatusInternalServerError,
}

// HTTPStatus 错误码对应的 HTTP 状态码，未知码按 500 处理
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==================== Error 定义 ====================

// Error 结构化错误
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status HTTP 状态码
func (e *Error) Status() int {
	return HTTPStatus(e.Code)
}

// WithDetails 附加详情（返回同一实例）
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// New 创建错误
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf 格式化创建错误
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// ==================== 快捷构造 ====================

func Unauthorized() *Error {
	return New(CodeUnauthorized, "Authentication required")
}

func RateLimited() *Error {
	return New(CodeRateLimited, "Rate limit exceeded")
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func NotFound(resource string) *Error {
	return Newf(CodeNotFound, "%s not found", resource)
}

func InvalidState(message string) *Error {
	return New(CodeInvalidState, message)
}

func InvalidAction(action string) *Error {
	return Newf(CodeInvalidAction, "Unknown action: %s", action)
}

func Store(cause error) *Error {
	return Wrap(CodeStore, "Storage operation failed", cause)
}

func Proxy(cause error) *Error {
	return Wrap(CodeProxy, "Upstream service unavailable", cause)
}

func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// ==================== 转换 ====================

// From 将任意错误归一为 *Error，未分类的按 INTERNAL_ERROR 处理
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(CodeInternal, err.Error(), err)
}

// FromStore 存储层错误转换：记录不存在 -> NOT_FOUND，其余 -> STORE_ERROR
func FromStore(err error, resource string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}
	return Store(err)
}

// IsCode 判断错误码
func IsCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
