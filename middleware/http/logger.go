package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/authsvc/log"
)

// LoggerConfig 访问日志配置
//
// 请求体与响应体不记录，其中包含密码与令牌。
type LoggerConfig struct {
	Logger    *log.Logger
	SkipPaths []string
	SkipFunc  func(*gin.Context) bool
	// SubjectKey 认证中间件写入用户 ID 的键，默认 DefaultContextKey
	SubjectKey string
	// SlowThreshold 超过阈值的请求以 warn 记录，0 关闭
	SlowThreshold time.Duration
}

// Logger 每个请求一条访问日志，级别随状态码升高
func Logger(cfg LoggerConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	if cfg.SubjectKey == "" {
		cfg.SubjectKey = DefaultContextKey
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		e := accessEvent(cfg, status, elapsed).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size())
		if id := c.GetString(RequestIDKey); id != "" {
			e = e.Str("request_id", id)
		}
		if subject, ok := c.Get(cfg.SubjectKey); ok {
			e = e.Interface("user_id", subject)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			e = e.Str("error", errs.String())
		}
		e.Msg("request")
	}
}

func accessEvent(cfg LoggerConfig, status int, elapsed time.Duration) *zerolog.Event {
	switch {
	case status >= 500:
		return cfg.Logger.Error()
	case status >= 400:
		return cfg.Logger.Warn()
	case cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold:
		return cfg.Logger.Warn().Bool("slow", true)
	default:
		return cfg.Logger.Info()
	}
}
