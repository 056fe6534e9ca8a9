package jwt

import "errors"

var (
	// Token 相关错误
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrExpiredToken  = errors.New("jwt: token expired")
	ErrInvalidClaims = errors.New("jwt: invalid claims")

	// 配置相关错误
	ErrConfigInvalid = errors.New("jwt: invalid configuration")
	ErrEmptySecret   = errors.New("jwt: secret cannot be empty")
)
