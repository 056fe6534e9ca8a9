package errors

import "net/http"

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// BadRequestWithMetadata 用于字段校验失败，metadata 为 字段 -> 原因
func BadRequestWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(http.StatusBadRequest, metadata, format, args...)
}

// Unauthorized 认证失败，消息对客户端保持统一
func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(http.StatusTooManyRequests, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, format, args...)
}
