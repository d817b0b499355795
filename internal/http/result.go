package httpapi

import (
	"errors"

	"damage-assessment/internal/domain"
)

// Result 统一响应包装 {code, type, message, result}
// 成功 code=2000；失败时 code 区分错误类别，前端据此决定是否跳转到配置页
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1

	// ResultConfigRequired 存储配置缺失或非法
	ResultConfigRequired = 41201
	// ResultInvalidRequest 字段名/取值/请求体非法
	ResultInvalidRequest = 40001
	// ResultStoreFailed 行存储查询或写入失败（消息原样透传）
	ResultStoreFailed = 50201
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(code int, message string) Result[any] {
	return Result[any]{Code: code, Type: "error", Message: message}
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfigurationIncomplete), errors.Is(err, domain.ErrInvalidConfiguration):
		return ResultConfigRequired
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrInvalidFieldValue):
		return ResultInvalidRequest
	case errors.Is(err, domain.ErrStoreQueryFailed), errors.Is(err, domain.ErrStoreUpdateFailed):
		return ResultStoreFailed
	}
	return ResultError
}
