package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authsvc/core/rate"
	"github.com/kochabx/authsvc/errors"
	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport/http"
)

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Limiter   rate.Limiter              // 必填
	KeyFunc   func(*gin.Context) string // 限流维度，默认客户端 IP
	SkipPaths []string
	SkipFunc  func(*gin.Context) bool
	Logger    *log.Logger
}

// RateLimit 限流中间件
// 超限返回 429 并设置 Retry-After；限流器本身出错时放行
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("middleware: RateLimit requires a Limiter")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		res, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			cfg.Logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, request allowed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			seconds := int(math.Ceil(res.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			http.Abort(c, errors.TooManyRequests("too many requests"))
			return
		}

		c.Next()
	}
}
