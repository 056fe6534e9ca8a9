package main

import (
	"path/filepath"
	"time"

	"github.com/kochabx/authsvc/audit"
	"github.com/kochabx/authsvc/config"
	"github.com/kochabx/authsvc/core/auth/jwt"
	"github.com/kochabx/authsvc/log"
	middleware "github.com/kochabx/authsvc/middleware/http"
	"github.com/kochabx/authsvc/store/db"
	"github.com/kochabx/authsvc/store/kafka"
	kitredis "github.com/kochabx/authsvc/store/redis"
	"github.com/kochabx/authsvc/transport/http"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig       `json:"server" mapstructure:"server"`
	JWT       jwt.Config         `json:"jwt" mapstructure:"jwt"`
	Session   SessionConfig      `json:"session" mapstructure:"session"`
	Password  PasswordConfig     `json:"password" mapstructure:"password"`
	Redis     RedisConfig        `json:"redis" mapstructure:"redis"`
	Database  db.Config          `json:"database" mapstructure:"database"`
	Log       log.Config         `json:"log" mapstructure:"log"`
	RateLimit RateLimitConfig    `json:"rateLimit" mapstructure:"rateLimit"`
	Audit     audit.Config       `json:"audit" mapstructure:"audit"`
	Kafka     kafka.Config       `json:"kafka" mapstructure:"kafka"`
	Metrics   http.MetricsConfig `json:"metrics" mapstructure:"metrics"`
	Health    http.HealthConfig  `json:"health" mapstructure:"health"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string                `json:"addr" mapstructure:"addr" default:"127.0.0.1:3000"`
	ShutdownTimeout time.Duration         `json:"shutdownTimeout" mapstructure:"shutdownTimeout" default:"15s"`
	AccessLog       bool                  `json:"accessLog" mapstructure:"accessLog"`
	CORS            middleware.CorsConfig `json:"cors" mapstructure:"cors"`
}

// SessionConfig 会话配置，会话 TTL 与 jwt.ttl 一致
type SessionConfig struct {
	RevokeOnRelogin bool `json:"revokeOnRelogin" mapstructure:"revokeOnRelogin"`
}

// PasswordConfig 密码哈希配置
type PasswordConfig struct {
	Cost int `json:"cost" mapstructure:"cost" default:"10" validate:"gte=4,lte=31"`
}

// RedisConfig Redis 连接与观测配置
type RedisConfig struct {
	kitredis.Config `mapstructure:",squash"`

	Tracing bool `json:"tracing" mapstructure:"tracing"`
	Metrics bool `json:"metrics" mapstructure:"metrics"`
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`
	Window  time.Duration `json:"window" mapstructure:"window" default:"1m"`
	Limit   int           `json:"limit" mapstructure:"limit" default:"10" validate:"gt=0"`
	Prefix  string        `json:"prefix" mapstructure:"prefix" default:"rate:login:"`
}

// 与原有部署保持一致的环境变量名
var envBindings = map[string]string{
	"database.url": "DATABASE_URL",
	"redis.url":    "REDIS_URL",
	"jwt.secret":   "JWT_SECRET",
}

// 结构体标签无法表达的默认值
var viperDefaults = map[string]any{
	"session.revokeOnRelogin": true,
	"rateLimit.enabled":       true,
	"health.enabled":          true,
}

// loadConfig 读取配置文件与环境变量，path 为空时仅使用默认值与环境变量
func loadConfig(path string) (*Config, *config.Config, error) {
	cfg := new(Config)

	opts := []config.Option{
		config.WithEnvBindings(envBindings),
		config.WithDefaults(viperDefaults),
	}
	if path == "" {
		opts = append(opts, config.WithOptionalFile(), config.WithWatch(false))
	} else {
		opts = append(opts, config.WithFile(filepath.Base(path), filepath.Dir(path)))
	}

	c := config.New(cfg, opts...)
	if err := c.Load(); err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}
