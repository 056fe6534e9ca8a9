package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	kerrors "github.com/kochabx/authsvc/errors"
	"github.com/kochabx/authsvc/transport/http"
)

var (
	ErrTokenMissing = errors.New("auth: token missing")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// DefaultContextKey 默认的认证结果上下文键
const DefaultContextKey = "claims"

// contextKey 请求上下文中认证结果的键类型
type contextKey string

// Authenticator 根据 token 解析出认证结果
type Authenticator[T any] interface {
	Authenticate(ctx context.Context, token string) (T, error)
}

// AuthenticatorFunc 函数形式的 Authenticator
type AuthenticatorFunc[T any] func(ctx context.Context, token string) (T, error)

func (f AuthenticatorFunc[T]) Authenticate(ctx context.Context, token string) (T, error) {
	return f(ctx, token)
}

// TokenExtractor 从请求中提取 token
type TokenExtractor func(c *gin.Context) (string, error)

// BearerExtractor 从 Authorization 头提取 Bearer token，前缀不区分大小写
func BearerExtractor() TokenExtractor {
	return func(c *gin.Context) (string, error) {
		header := c.GetHeader("Authorization")
		if header == "" {
			return "", ErrTokenMissing
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", ErrTokenMissing
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// HeaderExtractor 从指定请求头提取 token
func HeaderExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		if token := c.GetHeader(name); token != "" {
			return token, nil
		}
		return "", ErrTokenMissing
	}
}

// QueryExtractor 从查询参数提取 token
func QueryExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		if token := c.Query(name); token != "" {
			return token, nil
		}
		return "", ErrTokenMissing
	}
}

// CookieExtractor 从 cookie 提取 token
func CookieExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		token, err := c.Cookie(name)
		if err != nil || token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// ChainExtractor 依次尝试多个提取器，返回第一个成功的结果
func ChainExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		for _, extract := range extractors {
			if token, err := extract(c); err == nil {
				return token, nil
			}
		}
		return "", ErrTokenMissing
	}
}

// AuthConfig 认证中间件配置
type AuthConfig[T any] struct {
	// Authenticator 必填
	Authenticator Authenticator[T]
	// Extractor 默认 BearerExtractor
	Extractor TokenExtractor
	// SkipPaths 跳过认证的路径，语法见 NewPathMatcher
	SkipPaths []string
	SkipFunc  func(c *gin.Context) bool
	// ContextKey 默认 DefaultContextKey
	ContextKey     string
	SuccessHandler func(c *gin.Context, claims T)
	// ErrorHandler 默认返回统一的 401 响应
	ErrorHandler func(c *gin.Context, err error)
}

// Auth 认证中间件
// 认证结果同时写入 gin 上下文与请求上下文，通过 GetClaims 读取
func Auth[T any](config AuthConfig[T]) gin.HandlerFunc {
	if config.Authenticator == nil {
		panic("middleware: Auth requires an Authenticator")
	}
	if config.Extractor == nil {
		config.Extractor = BearerExtractor()
	}
	if config.ContextKey == "" {
		config.ContextKey = DefaultContextKey
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultAuthErrorHandler
	}
	matcher := NewPathMatcher(config.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, config.SkipFunc) {
			c.Next()
			return
		}

		token, err := config.Extractor(c)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		claims, err := config.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		c.Set(config.ContextKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims, config.ContextKey))

		if config.SuccessHandler != nil {
			config.SuccessHandler(c, claims)
		}

		c.Next()
	}
}

// WithClaims 将认证结果写入上下文
func WithClaims[T any](ctx context.Context, claims T, key ...string) context.Context {
	return context.WithValue(ctx, contextKey(claimsKey(key)), claims)
}

// GetClaims 从上下文读取认证结果
func GetClaims[T any](ctx context.Context, key ...string) (T, bool) {
	claims, ok := ctx.Value(contextKey(claimsKey(key))).(T)
	return claims, ok
}

func claimsKey(key []string) string {
	if len(key) > 0 && key[0] != "" {
		return key[0]
	}
	return DefaultContextKey
}

// 原因不外泄，统一返回 unauthorized
func defaultAuthErrorHandler(c *gin.Context, _ error) {
	http.Abort(c, kerrors.Unauthorized("unauthorized"))
}
