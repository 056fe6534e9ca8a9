package errors

import "errors"

// 标准库错误函数的别名，避免调用方同时导入两个 errors 包
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
