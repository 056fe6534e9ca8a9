package http

import (
	"context"
	"time"

	"github.com/kochabx/authsvc/core/tag"
	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport/http/metrics"
)

// MetricsConfig /metrics 端点
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Path      string `json:"path" mapstructure:"path" default:"/metrics"`
	Runtime   bool   `json:"runtime" mapstructure:"runtime"`
	BuildInfo bool   `json:"buildInfo" mapstructure:"buildInfo"`
	Process   bool   `json:"process" mapstructure:"process"`
}

// HealthConfig 健康检查端点
type HealthConfig struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`
	Path    string        `json:"path" mapstructure:"path" default:"/health"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"2s"`

	// Check 返回错误时响应 503
	Check func(ctx context.Context) error `json:"-" mapstructure:"-"`
}

type Option func(*Server)

// WithName 日志中的服务名
func WithName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry /metrics 暴露的注册表，默认 metrics.Prom
func WithRegistry(m metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.registry = m
		}
	}
}

func WithMetrics(cfg MetricsConfig) Option {
	return func(s *Server) {
		if err := tag.ApplyDefaults(&cfg); err != nil {
			s.logger.Error().Err(err).Msg("invalid metrics config")
			return
		}
		s.metrics = cfg
	}
}

func WithHealth(cfg HealthConfig) Option {
	return func(s *Server) {
		if err := tag.ApplyDefaults(&cfg); err != nil {
			s.logger.Error().Err(err).Msg("invalid health config")
			return
		}
		s.health = cfg
	}
}
