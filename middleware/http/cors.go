package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CorsConfig 跨域配置，可直接由配置文件加载
type CorsConfig struct {
	Enabled          bool     `json:"enabled" mapstructure:"enabled"`
	AllowOrigins     []string `json:"allowOrigins" mapstructure:"allowOrigins" default:"*"` // 支持 "*" 与 "*.example.com"
	AllowMethods     []string `json:"allowMethods" mapstructure:"allowMethods"`
	AllowHeaders     []string `json:"allowHeaders" mapstructure:"allowHeaders"`
	ExposeHeaders    []string `json:"exposeHeaders" mapstructure:"exposeHeaders"`
	AllowCredentials bool     `json:"allowCredentials" mapstructure:"allowCredentials"`
	MaxAge           int      `json:"maxAge" mapstructure:"maxAge" default:"43200"` // 秒

	SkipPaths []string                `json:"-" mapstructure:"-"`
	SkipFunc  func(*gin.Context) bool `json:"-" mapstructure:"-"`
}

// DefaultCorsConfig 默认允许任意源访问认证接口，并暴露限流响应头
func DefaultCorsConfig() CorsConfig {
	return CorsConfig{
		Enabled:       true,
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        43200,
	}
}

// corsPolicy 预先计算的响应头
type corsPolicy struct {
	anyOrigin   bool
	origins     []string
	credentials bool
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func newCorsPolicy(cfg CorsConfig) *corsPolicy {
	def := DefaultCorsConfig()
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = def.AllowOrigins
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = def.AllowMethods
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = def.AllowHeaders
	}
	if cfg.ExposeHeaders == nil {
		cfg.ExposeHeaders = def.ExposeHeaders
	}

	return &corsPolicy{
		anyOrigin:   slices.Contains(cfg.AllowOrigins, "*"),
		origins:     cfg.AllowOrigins,
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.MaxAge),
	}
}

// allow 判断源是否允许，"*.example.com" 匹配其任意子域
func (p *corsPolicy) allow(origin string) bool {
	if p.anyOrigin {
		return true
	}
	for _, o := range p.origins {
		if o == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(o, "*"); ok && strings.HasPrefix(suffix, ".") && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// Cors 跨域中间件，预检请求直接返回 204
func Cors(cfgs ...CorsConfig) gin.HandlerFunc {
	cfg := DefaultCorsConfig()
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	policy := newCorsPolicy(cfg)
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || shouldSkip(c, matcher, cfg.SkipFunc) || !policy.allow(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		// 携带凭证时不能返回 "*"
		if policy.anyOrigin && !policy.credentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if policy.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if policy.expose != "" {
			h.Set("Access-Control-Expose-Headers", policy.expose)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", policy.methods)
			h.Set("Access-Control-Allow-Headers", policy.headers)
			h.Set("Access-Control-Max-Age", policy.maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
