// Package retry 提供错误分类、带退避的重试以及降级内容生成
package retry

import (
	"context"
	"errors"
	"strings"
)

// ErrorType 错误类型
type ErrorType string

const (
	ErrorTypeInputValidation ErrorType = "INPUT_VALIDATION"
	ErrorTypeAIGeneration    ErrorType = "AI_GENERATION"
	ErrorTypeNetwork         ErrorType = "NETWORK"
	ErrorTypeTimeout         ErrorType = "TIMEOUT"
	ErrorTypeRateLimit       ErrorType = "RATE_LIMIT"
	// ErrorTypeUnknown 未携带类型的错误，默认可重试
	ErrorTypeUnknown ErrorType = "UNKNOWN"
)

// Error 带类型的错误
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError 创建输入校验错误，永远不可重试
func NewValidationError(message string) *Error {
	return &Error{
		Type:      ErrorTypeInputValidation,
		Message:   message,
		Retryable: false,
	}
}

// NewGenerationError 创建生成错误
func NewGenerationError(message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      ErrorTypeAIGeneration,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// Classify 将任意错误归类。
// 已带类型的错误原样返回；其余错误按消息子串做尽力而为的推断：
// "timeout" -> TIMEOUT，"rate limit"/"429" -> RATE_LIMIT，
// "network"/"connection" -> NETWORK，"invalid" -> 不可重试的 AI_GENERATION，
// 其它 -> 可重试的 AI_GENERATION。
// 这只是启发式规则，不是严格协议；后端若能提供结构化错误码应优先使用。
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Message: err.Error(), Retryable: true, Cause: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return &Error{Type: ErrorTypeTimeout, Message: err.Error(), Retryable: true, Cause: err}
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return &Error{Type: ErrorTypeRateLimit, Message: err.Error(), Retryable: true, Cause: err}
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return &Error{Type: ErrorTypeNetwork, Message: err.Error(), Retryable: true, Cause: err}
	case strings.Contains(msg, "invalid"):
		return &Error{Type: ErrorTypeAIGeneration, Message: err.Error(), Retryable: false, Cause: err}
	default:
		return &Error{Type: ErrorTypeAIGeneration, Message: err.Error(), Retryable: true, Cause: err}
	}
}

// IsRetryable 判断错误是否值得重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return Classify(err).Retryable
}

// TypeOf 返回错误类型，未知错误返回 ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}
