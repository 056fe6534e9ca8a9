package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authsvc/errors"
)

const successMsg = "success"

// Response 统一响应信封
//
// 成功时 code 与 HTTP 状态码一致，失败时 code 取自 errors.Error，
// 字段级校验失败的元数据放在 data 中。
type Response[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data T      `json:"data,omitempty"`
}

// OK 200
//
//	OK(c, profile)
//	// {"code":200,"msg":"success","data":{"id":1,"email":"a@b.c","name":"Alice"}}
func OK(c *gin.Context, data any) {
	write(c, http.StatusOK, successMsg, data)
}

// Created 201
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, successMsg, data)
}

// Fail 按 errors.Error 的业务码写入错误响应
//
// 非 errors.Error 的错误按 500 处理，原始信息只记录到 gin 上下文。
func Fail(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}
	_ = c.Error(err)

	var e *errors.Error
	if !errors.As(err, &e) {
		e = errors.Internal("internal server error")
	}

	var data any
	if len(e.Metadata) > 0 {
		data = e.GetMetadata()
	}
	write(c, e.Code, e.Message, data)
}

// Abort 写入错误响应并终止后续处理器
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}

func write(c *gin.Context, code int, msg string, data any) {
	if c == nil {
		return
	}
	c.JSON(errors.HTTPStatus(code), &Response[any]{Code: code, Msg: msg, Data: data})
}
