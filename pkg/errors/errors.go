// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeConflict           ErrorCode = "1003"
	CodeTooManyRequests    ErrorCode = "1004"
	CodeInternalError      ErrorCode = "1005"
	CodeServiceUnavailable ErrorCode = "1006"

	// 资源错误 (3xxx)
	CodeConversationNotFound ErrorCode = "3001"
	CodeModelBlockNotFound   ErrorCode = "3002"
	CodePersonaNotFound      ErrorCode = "3003"
	CodeModeNotFound         ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeDraftingFailed   ErrorCode = "4001"
	CodeEvaluationFailed ErrorCode = "4002"
	CodeSynthesisFailed  ErrorCode = "4003"
	CodeEmptyWriterSet   ErrorCode = "4004"

	// 外部服务错误 (5xxx)
	CodeDatabaseError        ErrorCode = "5001"
	CodeCacheError           ErrorCode = "5002"
	CodeLLMProviderError     ErrorCode = "5003"
	CodeLLMTimeout           ErrorCode = "5004"
	CodeLLMRateLimited       ErrorCode = "5005"
	CodeLLMCreditExhausted   ErrorCode = "5006"
	CodeLLMInvalidModel      ErrorCode = "5007"
	CodeLLMEmptyResponse     ErrorCode = "5008"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeEmptyWriterSet:
		return http.StatusBadRequest
	case CodeNotFound, CodeConversationNotFound, CodeModelBlockNotFound, CodePersonaNotFound, CodeModeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests, CodeLLMRateLimited:
		return http.StatusTooManyRequests
	case CodeLLMCreditExhausted:
		return http.StatusPaymentRequired
	case CodeLLMTimeout:
		return http.StatusGatewayTimeout
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrConversationNotFound = New(CodeConversationNotFound, "conversation not found")
	ErrModelBlockNotFound   = New(CodeModelBlockNotFound, "model block not found")
	ErrPersonaNotFound      = New(CodePersonaNotFound, "persona not found")
	ErrModeNotFound         = New(CodeModeNotFound, "mode not found")

	ErrEmptyWriterSet  = New(CodeEmptyWriterSet, "no valid writer models specified")
	ErrSynthesisFailed = New(CodeSynthesisFailed, "editor synthesis failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// CodeOf 提取错误码，非 AppError 返回 CodeUnknown
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeUnknown
}
