package handler

import (
	"slices"

	"github.com/gin-gonic/gin"

	middleware "github.com/kochabx/authsvc/middleware/http"
)

// Routes 注册所有接口
//
//	POST /auth/register
//	POST /auth/login
//	POST /auth/logout  (认证)
//	GET  /profile      (认证)
func (h *Handler) Routes(r gin.IRouter) {
	authn := middleware.Auth(middleware.AuthConfig[int64]{
		Authenticator: h.sessions,
	})

	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", append(slices.Clone(h.login), h.Login)...)
	auth.POST("/logout", authn, h.Logout)

	r.GET("/profile", authn, h.Profile)
}

// RouterConfig 路由公共中间件配置
type RouterConfig struct {
	// Middlewares 在访问日志之后、路由之前执行，例如指标与 CORS
	Middlewares []gin.HandlerFunc
	AccessLog   middleware.LoggerConfig
}

// NewRouter 创建 gin 引擎并注册接口
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(middleware.RecoveryConfig{StackTrace: true, Logger: h.logger}),
		middleware.Logger(withLogger(cfg.AccessLog, h)),
	)
	r.Use(cfg.Middlewares...)

	h.Routes(r)
	return r
}

func withLogger(cfg middleware.LoggerConfig, h *Handler) middleware.LoggerConfig {
	if cfg.Logger == nil {
		cfg.Logger = h.logger
	}
	return cfg
}
