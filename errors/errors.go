package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// UnknownCode 非结构化错误使用的业务码
const UnknownCode = http.StatusInternalServerError

// Error 结构化错误
// Code 与 Message 面向客户端，cause 只出现在服务端日志中
type Error struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	cause    error
}

// Error 形如 code=401, message=unauthorized, metadata={k=v}, cause=...
// 元数据按键排序
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("code=")
	b.WriteString(strconv.Itoa(e.Code))
	b.WriteString(", message=")
	b.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		b.WriteString(", metadata={")
		for i, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(e.Metadata[k])
		}
		b.WriteByte('}')
	}

	if e.cause != nil {
		b.WriteString(", cause=")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is 业务码与消息相同即视为同一错误
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code && e.Message == t.Message
}

// WithMetadata 返回合并了 m 的副本
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(c.Metadata, m)
	return c
}

// WithCause 返回以 cause 为原因的副本
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	c := e.clone()
	c.cause = cause
	return c
}

func (e *Error) clone() *Error {
	c := *e
	c.Metadata = maps.Clone(e.Metadata)
	return &c
}

func (e *Error) GetCode() int       { return e.Code }
func (e *Error) GetMessage() string { return e.Message }
func (e *Error) GetCause() error    { return e.cause }

// GetMetadata 返回元数据副本，没有元数据时为 nil
func (e *Error) GetMetadata() map[string]string {
	if len(e.Metadata) == 0 {
		return nil
	}
	return maps.Clone(e.Metadata)
}

// HTTPStatus 见包级函数 HTTPStatus
func (e *Error) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// HTTPStatus 业务码是已知的 HTTP 状态码时原样返回，否则为 200
func HTTPStatus(code int) int {
	if http.StatusText(code) != "" {
		return code
	}
	return http.StatusOK
}

// New 没有 args 时 format 按字面使用
func New(code int, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Message: msg}
}

func NewWithMetadata(code int, metadata map[string]string, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Metadata = maps.Clone(metadata)
	if len(e.Metadata) == 0 {
		e.Metadata = nil
	}
	return e
}

// FromError 返回链上的 *Error，找不到时包装为 UnknownCode
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(UnknownCode, "%v", err).WithCause(err)
}

// Wrap err 为 nil 时返回 nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}

// WrapWithMetadata err 为 nil 时返回 nil
func WrapWithMetadata(err error, code int, metadata map[string]string, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return NewWithMetadata(code, metadata, format, args...).WithCause(err)
}

// Code 返回错误链上的业务码，非结构化错误为 UnknownCode，nil 为 0
func Code(err error) int {
	if err == nil {
		return 0
	}
	return FromError(err).Code
}
