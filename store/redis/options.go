package redis

import (
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authsvc/log"
)

// Option 客户端选项
type Option func(*options)

type options struct {
	logger  *log.Logger
	hooks   []redis.Hook
	debug   bool
	tracing []redisotel.TracingOption
	metrics []redisotel.MetricsOption

	traced, metered bool
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHooks 追加自定义钩子
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithDebug 逐条记录命令，慢命令阈值取 Config.SlowThreshold
func WithDebug() Option {
	return func(o *options) {
		o.debug = true
	}
}

// WithTracing 通过 redisotel 上报链路
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(o *options) {
		o.traced = true
		o.tracing = opts
	}
}

// WithMetrics 通过 redisotel 上报连接池与命令指标
func WithMetrics(opts ...redisotel.MetricsOption) Option {
	return func(o *options) {
		o.metered = true
		o.metrics = opts
	}
}
